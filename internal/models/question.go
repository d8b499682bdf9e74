package models

import (
	"fmt"

	"iquiz-service/internal/httperr"
)

// QuestionKind is the closed tag set for the four question variants.
type QuestionKind string

const (
	KindMCQ QuestionKind = "MCQ" // multiple choice, exactly one correct answer
	KindMSQ QuestionKind = "MSQ" // multiple select, one or more correct answers
	KindCLO QuestionKind = "CLO" // closed short-answer
	KindOEQ QuestionKind = "OEQ" // open-ended
)

var QuestionKinds = []QuestionKind{KindMCQ, KindMSQ, KindCLO, KindOEQ}

func (k QuestionKind) Valid() bool {
	switch k {
	case KindMCQ, KindMSQ, KindCLO, KindOEQ:
		return true
	}
	return false
}

type Choice struct {
	ID      string `bson:"id" json:"id"`
	Content string `bson:"content" json:"content"`
}

// Question is the document shape shared by all four kinds. MCQ/MSQ carry
// Choices and Answers (choice ids); CLO/OEQ carry free-form Criteria and no
// choice list. Each kind lives in its own collection, so the kind tag is
// carried by the quiz's question reference, not the document.
type Question struct {
	ID       string   `bson:"_id,omitempty" json:"id"`
	Prompt   string   `bson:"prompt" json:"prompt"`
	MaxScore int      `bson:"max_score" json:"maxScore"`
	Choices  []Choice `bson:"choices,omitempty" json:"choices,omitempty"`
	Answers  []string `bson:"answers,omitempty" json:"answers,omitempty"`
	Criteria string   `bson:"criteria,omitempty" json:"criteria,omitempty"`
}

// Validate enforces the per-kind invariants before persistence. The single
// dispatch here replaces per-kind branches scattered across handlers.
func (q *Question) Validate(kind QuestionKind) error {
	if !kind.Valid() {
		return httperr.Validationf("invalid question type %s", kind)
	}
	if q.Prompt == "" {
		return httperr.Validationf("question prompt is required")
	}
	if q.MaxScore < 0 {
		return httperr.Validationf("question max score must not be negative")
	}

	switch kind {
	case KindMCQ, KindMSQ:
		if len(q.Choices) == 0 {
			return httperr.Validationf("%s question requires choices", kind)
		}
		for _, choice := range q.Choices {
			if choice.ID == "" || choice.Content == "" {
				return httperr.Validationf("invalid choices in %s question", kind)
			}
		}
		if kind == KindMCQ && len(q.Answers) != 1 {
			return httperr.Validationf("MCQ question requires exactly one answer")
		}
		if kind == KindMSQ && len(q.Answers) == 0 {
			return httperr.Validationf("MSQ question requires at least one answer")
		}
		for _, answer := range q.Answers {
			if !q.hasChoice(answer) {
				return httperr.Validationf("answer %s does not match any choice id", answer)
			}
		}
	case KindCLO, KindOEQ:
		if len(q.Choices) > 0 {
			return httperr.Validationf("%s question carries no choice list", kind)
		}
	}
	return nil
}

func (q *Question) hasChoice(id string) bool {
	for _, choice := range q.Choices {
		if choice.ID == id {
			return true
		}
	}
	return false
}

// Redacted returns a copy safe to show a student before grades are out:
// correct answers and marking criteria removed.
func (q *Question) Redacted() *Question {
	redacted := *q
	redacted.Answers = nil
	redacted.Criteria = ""
	return &redacted
}

func (q *Question) String() string {
	return fmt.Sprintf("question %s (%d pts)", q.ID, q.MaxScore)
}
