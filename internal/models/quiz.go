package models

import "time"

type QuizStatus string

const (
	QuizStatusDraft    QuizStatus = "draft"
	QuizStatusUpcoming QuizStatus = "upcoming"
	QuizStatusActive   QuizStatus = "active"
	QuizStatusPast     QuizStatus = "past"
)

func (s QuizStatus) Valid() bool {
	switch s {
	case QuizStatusDraft, QuizStatusUpcoming, QuizStatusActive, QuizStatusPast:
		return true
	}
	return false
}

// QuizQuestionRef ties a question document into a quiz: id, the kind tag
// telling which collection it lives in, and the weight it grades out of.
type QuizQuestionRef struct {
	Question string       `bson:"question" json:"question"`
	Type     QuestionKind `bson:"type" json:"type"`
	MaxScore int          `bson:"max_score" json:"maxScore"`
}

// Quiz moves through draft -> released -> grades released, one-directional.
// Start/end times are only required once released.
type Quiz struct {
	ID              string            `bson:"_id,omitempty" json:"id"`
	QuizName        string            `bson:"quiz_name" json:"quizName"`
	IsDraft         bool              `bson:"is_draft" json:"isDraft"`
	StartTime       time.Time         `bson:"start_time,omitempty" json:"startTime"`
	EndTime         time.Time         `bson:"end_time,omitempty" json:"endTime"`
	Course          string            `bson:"course" json:"course"`
	Questions       []QuizQuestionRef `bson:"questions" json:"questions"`
	IsGradeReleased bool              `bson:"is_grade_released" json:"isGradeReleased"`
	CreatedAt       time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updatedAt"`
}

// StatusAt classifies the quiz against the wall clock.
func (q *Quiz) StatusAt(now time.Time) QuizStatus {
	if q.IsDraft {
		return QuizStatusDraft
	}
	if now.Before(q.StartTime) {
		return QuizStatusUpcoming
	}
	if now.After(q.EndTime) {
		return QuizStatusPast
	}
	return QuizStatusActive
}

func (q *Quiz) Ended(now time.Time) bool {
	return !q.IsDraft && now.After(q.EndTime)
}

// TotalMaxScore sums the per-question weights.
func (q *Quiz) TotalMaxScore() int {
	total := 0
	for _, ref := range q.Questions {
		total += ref.MaxScore
	}
	return total
}
