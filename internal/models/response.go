package models

import "time"

type ResponseStatus string

const (
	ResponseWriting   ResponseStatus = "writing"
	ResponseSubmitted ResponseStatus = "submitted"
)

type GradingState string

const (
	GradedNone      GradingState = "none"
	GradedPartially GradingState = "partially"
	GradedFully     GradingState = "fully"
)

const UngradedScore = -1

// QuestionResponse holds a student's answer to one question. Response is a
// list of strings: selected choice ids for MCQ/MSQ, the typed answer for
// CLO/OEQ. Score stays -1 until an instructor grades it.
type QuestionResponse struct {
	Question string   `bson:"question" json:"question"`
	Response []string `bson:"response" json:"response"`
	Score    int      `bson:"score" json:"score"`
}

// QuizResponse is the single attempt document per (quiz, student) pair,
// enforced by a unique compound index.
type QuizResponse struct {
	ID                string             `bson:"_id,omitempty" json:"id"`
	Quiz              string             `bson:"quiz" json:"quiz"`
	Student           string             `bson:"student" json:"student"`
	Status            ResponseStatus     `bson:"status" json:"status"`
	Graded            GradingState       `bson:"graded" json:"graded"`
	QuestionResponses []QuestionResponse `bson:"question_responses" json:"questionResponses"`
	StartedAt         time.Time          `bson:"started_at" json:"startedAt"`
	SubmittedAt       time.Time          `bson:"submitted_at,omitempty" json:"submittedAt,omitempty"`
}

// GradingStateOf recomputes the aggregate grading state from per-question
// scores: fully once nothing is left at -1, partially once anything is set.
func (r *QuizResponse) GradingStateOf() GradingState {
	graded := 0
	for _, qr := range r.QuestionResponses {
		if qr.Score != UngradedScore {
			graded++
		}
	}
	switch {
	case len(r.QuestionResponses) > 0 && graded == len(r.QuestionResponses):
		return GradedFully
	case graded > 0:
		return GradedPartially
	default:
		return GradedNone
	}
}

// TotalScore sums the graded question scores; ungraded questions count 0.
func (r *QuizResponse) TotalScore() int {
	total := 0
	for _, qr := range r.QuestionResponses {
		if qr.Score != UngradedScore {
			total += qr.Score
		}
	}
	return total
}
