package models

import (
	"testing"
	"time"
)

func TestQuizStatusAt(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name string
		quiz Quiz
		want QuizStatus
	}{
		{
			name: "draft ignores times",
			quiz: Quiz{IsDraft: true, StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour)},
			want: QuizStatusDraft,
		},
		{
			name: "before window",
			quiz: Quiz{StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour)},
			want: QuizStatusUpcoming,
		},
		{
			name: "inside window",
			quiz: Quiz{StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour)},
			want: QuizStatusActive,
		},
		{
			name: "after window",
			quiz: Quiz{StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour)},
			want: QuizStatusPast,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.quiz.StatusAt(now); got != tc.want {
				t.Errorf("StatusAt() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestQuizEnded(t *testing.T) {
	now := time.Now()

	ended := Quiz{StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour)}
	if !ended.Ended(now) {
		t.Errorf("quiz past its end time should be ended")
	}

	running := Quiz{StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour)}
	if running.Ended(now) {
		t.Errorf("quiz inside its window should not be ended")
	}

	draft := Quiz{IsDraft: true, EndTime: now.Add(-time.Hour)}
	if draft.Ended(now) {
		t.Errorf("draft quiz can never be ended")
	}
}

func TestQuizTotalMaxScore(t *testing.T) {
	quiz := Quiz{Questions: []QuizQuestionRef{
		{Question: "q1", Type: KindMCQ, MaxScore: 2},
		{Question: "q2", Type: KindMSQ, MaxScore: 3},
		{Question: "q3", Type: KindOEQ, MaxScore: 10},
	}}
	if got := quiz.TotalMaxScore(); got != 15 {
		t.Errorf("TotalMaxScore() = %d, want 15", got)
	}

	empty := Quiz{}
	if got := empty.TotalMaxScore(); got != 0 {
		t.Errorf("TotalMaxScore() on empty quiz = %d, want 0", got)
	}
}
