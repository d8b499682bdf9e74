package models

import "testing"

func TestQuestionValidate(t *testing.T) {
	choices := []Choice{
		{ID: "a", Content: "first"},
		{ID: "b", Content: "second"},
		{ID: "c", Content: "third"},
	}

	testCases := []struct {
		name     string
		kind     QuestionKind
		question Question
		wantErr  bool
	}{
		{
			name:     "valid MCQ",
			kind:     KindMCQ,
			question: Question{Prompt: "pick one", MaxScore: 2, Choices: choices, Answers: []string{"b"}},
		},
		{
			name:     "valid MSQ with two answers",
			kind:     KindMSQ,
			question: Question{Prompt: "pick many", MaxScore: 3, Choices: choices, Answers: []string{"a", "c"}},
		},
		{
			name:     "valid CLO",
			kind:     KindCLO,
			question: Question{Prompt: "short answer", MaxScore: 1, Criteria: "exact match"},
		},
		{
			name:     "valid OEQ without criteria",
			kind:     KindOEQ,
			question: Question{Prompt: "essay", MaxScore: 10},
		},
		{
			name:     "unknown kind",
			kind:     "TRIVIA",
			question: Question{Prompt: "pick one", MaxScore: 1, Choices: choices, Answers: []string{"a"}},
			wantErr:  true,
		},
		{
			name:     "empty prompt",
			kind:     KindOEQ,
			question: Question{MaxScore: 1},
			wantErr:  true,
		},
		{
			name:     "negative max score",
			kind:     KindOEQ,
			question: Question{Prompt: "essay", MaxScore: -1},
			wantErr:  true,
		},
		{
			name:     "MCQ without choices",
			kind:     KindMCQ,
			question: Question{Prompt: "pick one", MaxScore: 1, Answers: []string{"a"}},
			wantErr:  true,
		},
		{
			name: "MCQ with blank choice content",
			kind: KindMCQ,
			question: Question{
				Prompt:   "pick one",
				MaxScore: 1,
				Choices:  []Choice{{ID: "a", Content: ""}},
				Answers:  []string{"a"},
			},
			wantErr: true,
		},
		{
			name:     "MCQ with two answers",
			kind:     KindMCQ,
			question: Question{Prompt: "pick one", MaxScore: 1, Choices: choices, Answers: []string{"a", "b"}},
			wantErr:  true,
		},
		{
			name:     "MCQ with no answers",
			kind:     KindMCQ,
			question: Question{Prompt: "pick one", MaxScore: 1, Choices: choices},
			wantErr:  true,
		},
		{
			name:     "MSQ with no answers",
			kind:     KindMSQ,
			question: Question{Prompt: "pick many", MaxScore: 1, Choices: choices},
			wantErr:  true,
		},
		{
			name:     "answer not among choices",
			kind:     KindMCQ,
			question: Question{Prompt: "pick one", MaxScore: 1, Choices: choices, Answers: []string{"z"}},
			wantErr:  true,
		},
		{
			name:     "CLO with choice list",
			kind:     KindCLO,
			question: Question{Prompt: "short answer", MaxScore: 1, Choices: choices},
			wantErr:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.question.Validate(tc.kind)
			if tc.wantErr && err == nil {
				t.Errorf("expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestQuestionRedacted(t *testing.T) {
	original := &Question{
		ID:       "q1",
		Prompt:   "pick one",
		MaxScore: 2,
		Choices:  []Choice{{ID: "a", Content: "first"}},
		Answers:  []string{"a"},
		Criteria: "rubric",
	}

	redacted := original.Redacted()

	if redacted.Answers != nil {
		t.Errorf("redacted question still carries answers: %v", redacted.Answers)
	}
	if redacted.Criteria != "" {
		t.Errorf("redacted question still carries criteria: %q", redacted.Criteria)
	}
	if redacted.Prompt != original.Prompt || len(redacted.Choices) != 1 {
		t.Errorf("redaction should not touch prompt or choices")
	}
	if original.Answers == nil || original.Criteria == "" {
		t.Errorf("redaction mutated the original question")
	}
}
