package service

import (
	"context"
	"testing"
	"time"

	"iquiz-service/internal/httperr"
	"iquiz-service/internal/models"
)

type responseFixture struct {
	*quizFixture
	respSvc *ResponseService
	quiz    *models.Quiz
}

func newResponseFixture(t *testing.T, start, end int64) *responseFixture {
	t.Helper()
	qf := newQuizFixture(t)
	f := &responseFixture{
		quizFixture: qf,
		respSvc:     NewResponseService(qf.users, qf.courses, qf.quizzes, qf.responses),
	}
	f.quiz = f.createReleasedQuiz(t, start, end)
	return f
}

func TestStartResponseLazyCreates(t *testing.T) {
	start, end := activeWindow()
	f := newResponseFixture(t, start, end)
	ctx := context.Background()

	resp, err := f.respSvc.StartResponse(ctx, f.student.ID, f.quiz.ID)
	if err != nil {
		t.Fatalf("starting response: %v", err)
	}
	if resp.Status != models.ResponseWriting {
		t.Errorf("status = %s, want writing", resp.Status)
	}
	if len(resp.QuestionResponses) != len(f.quiz.Questions) {
		t.Errorf("blank answers = %d, want %d", len(resp.QuestionResponses), len(f.quiz.Questions))
	}
	for _, qr := range resp.QuestionResponses {
		if qr.Score != models.UngradedScore {
			t.Errorf("blank answer score = %d, want %d", qr.Score, models.UngradedScore)
		}
	}

	// A second open resumes the same attempt.
	again, err := f.respSvc.StartResponse(ctx, f.student.ID, f.quiz.ID)
	if err != nil {
		t.Fatalf("resuming response: %v", err)
	}
	if again.ID != resp.ID {
		t.Errorf("second start created a new attempt: %s vs %s", again.ID, resp.ID)
	}
	if len(f.responses.responses) != 1 {
		t.Errorf("stored attempts = %d, want 1", len(f.responses.responses))
	}
}

func TestStartResponseOutsideWindow(t *testing.T) {
	now := time.Now()

	upcoming := newResponseFixture(t, now.Add(time.Hour).UnixMilli(), now.Add(2*time.Hour).UnixMilli())
	_, err := upcoming.respSvc.StartResponse(context.Background(), upcoming.student.ID, upcoming.quiz.ID)
	if !httperr.IsKind(err, httperr.InvalidState) {
		t.Errorf("starting before window: err = %v, want invalid state", err)
	}

	past := newResponseFixture(t, now.Add(-2*time.Hour).UnixMilli(), now.Add(-time.Hour).UnixMilli())
	_, err = past.respSvc.StartResponse(context.Background(), past.student.ID, past.quiz.ID)
	if !httperr.IsKind(err, httperr.InvalidState) {
		t.Errorf("starting after window: err = %v, want invalid state", err)
	}
}

func TestStartResponseAccessControl(t *testing.T) {
	start, end := activeWindow()
	f := newResponseFixture(t, start, end)
	ctx := context.Background()

	if _, err := f.respSvc.StartResponse(ctx, f.instructor.ID, f.quiz.ID); !httperr.IsKind(err, httperr.AccessDenied) {
		t.Errorf("instructor starting attempt: err = %v, want access denied", err)
	}

	outsider := &models.User{Type: models.UserTypeStudent, Email: "out@example.edu", Verified: true}
	f.users.Create(ctx, outsider)
	if _, err := f.respSvc.StartResponse(ctx, outsider.ID, f.quiz.ID); !httperr.IsKind(err, httperr.AccessDenied) {
		t.Errorf("non-member starting attempt: err = %v, want access denied", err)
	}
}

func TestSaveResponseOverwritesWholesale(t *testing.T) {
	start, end := activeWindow()
	f := newResponseFixture(t, start, end)
	ctx := context.Background()

	f.respSvc.StartResponse(ctx, f.student.ID, f.quiz.ID)

	first := []models.QuestionResponse{
		{Question: f.quiz.Questions[0].Question, Response: []string{"a"}},
		{Question: f.quiz.Questions[1].Question, Response: []string{"draft answer"}},
	}
	if _, err := f.respSvc.SaveResponse(ctx, f.student.ID, f.quiz.ID, first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := []models.QuestionResponse{
		{Question: f.quiz.Questions[0].Question, Response: []string{"b"}},
	}
	resp, err := f.respSvc.SaveResponse(ctx, f.student.ID, f.quiz.ID, second)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if len(resp.QuestionResponses) != 1 {
		t.Fatalf("answers after overwrite = %d, want 1", len(resp.QuestionResponses))
	}
	if got := resp.QuestionResponses[0].Response; len(got) != 1 || got[0] != "b" {
		t.Errorf("saved answer = %v, want [b]", got)
	}
}

func TestSaveResponseRejectsForeignQuestion(t *testing.T) {
	start, end := activeWindow()
	f := newResponseFixture(t, start, end)
	ctx := context.Background()

	f.respSvc.StartResponse(ctx, f.student.ID, f.quiz.ID)

	_, err := f.respSvc.SaveResponse(ctx, f.student.ID, f.quiz.ID, []models.QuestionResponse{
		{Question: "question-999", Response: []string{"a"}},
	})
	if !httperr.IsKind(err, httperr.Validation) {
		t.Fatalf("foreign question: err = %v, want validation error", err)
	}
}

func TestSubmitResponseIsOneWay(t *testing.T) {
	start, end := activeWindow()
	f := newResponseFixture(t, start, end)
	ctx := context.Background()

	f.respSvc.StartResponse(ctx, f.student.ID, f.quiz.ID)

	resp, err := f.respSvc.SubmitResponse(ctx, f.student.ID, f.quiz.ID)
	if err != nil {
		t.Fatalf("submitting: %v", err)
	}
	if resp.Status != models.ResponseSubmitted {
		t.Errorf("status = %s, want submitted", resp.Status)
	}
	if resp.SubmittedAt.IsZero() {
		t.Errorf("submitted_at not set")
	}

	if _, err := f.respSvc.SubmitResponse(ctx, f.student.ID, f.quiz.ID); !httperr.IsKind(err, httperr.InvalidState) {
		t.Errorf("double submit: err = %v, want invalid state", err)
	}
	_, err = f.respSvc.SaveResponse(ctx, f.student.ID, f.quiz.ID, nil)
	if !httperr.IsKind(err, httperr.InvalidState) {
		t.Errorf("save after submit: err = %v, want invalid state", err)
	}
}

func TestGradeResponse(t *testing.T) {
	start, end := activeWindow()
	f := newResponseFixture(t, start, end)
	ctx := context.Background()

	f.respSvc.StartResponse(ctx, f.student.ID, f.quiz.ID)
	f.respSvc.SaveResponse(ctx, f.student.ID, f.quiz.ID, []models.QuestionResponse{
		{Question: f.quiz.Questions[0].Question, Response: []string{"b"}},
		{Question: f.quiz.Questions[1].Question, Response: []string{"it calls itself"}},
	})
	f.respSvc.SubmitResponse(ctx, f.student.ID, f.quiz.ID)

	// One question at a time leaves the attempt partially graded.
	resp, err := f.respSvc.GradeResponse(ctx, f.instructor.ID, GradeInput{
		QuizID:    f.quiz.ID,
		StudentID: f.student.ID,
		Scores:    map[string]int{f.quiz.Questions[0].Question: 2},
	})
	if err != nil {
		t.Fatalf("partial grade: %v", err)
	}
	if resp.Graded != models.GradedPartially {
		t.Errorf("grading state = %s, want partially", resp.Graded)
	}

	resp, err = f.respSvc.GradeResponse(ctx, f.instructor.ID, GradeInput{
		QuizID:    f.quiz.ID,
		StudentID: f.student.ID,
		Scores:    map[string]int{f.quiz.Questions[1].Question: 4},
	})
	if err != nil {
		t.Fatalf("final grade: %v", err)
	}
	if resp.Graded != models.GradedFully {
		t.Errorf("grading state = %s, want fully", resp.Graded)
	}
	if resp.TotalScore() != 6 {
		t.Errorf("total score = %d, want 6", resp.TotalScore())
	}
}

func TestGradeResponseBounds(t *testing.T) {
	start, end := activeWindow()
	f := newResponseFixture(t, start, end)
	ctx := context.Background()

	f.respSvc.StartResponse(ctx, f.student.ID, f.quiz.ID)
	f.respSvc.SubmitResponse(ctx, f.student.ID, f.quiz.ID)

	maxScore := f.quiz.Questions[0].MaxScore
	testCases := []struct {
		name  string
		score int
	}{
		{"negative", -1},
		{"above max", maxScore + 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.respSvc.GradeResponse(ctx, f.instructor.ID, GradeInput{
				QuizID:    f.quiz.ID,
				StudentID: f.student.ID,
				Scores:    map[string]int{f.quiz.Questions[0].Question: tc.score},
			})
			if !httperr.IsKind(err, httperr.Validation) {
				t.Errorf("score %d: err = %v, want validation error", tc.score, err)
			}
		})
	}

	_, err := f.respSvc.GradeResponse(ctx, f.instructor.ID, GradeInput{
		QuizID:    f.quiz.ID,
		StudentID: f.student.ID,
		Scores:    map[string]int{"question-999": 1},
	})
	if !httperr.IsKind(err, httperr.Validation) {
		t.Errorf("foreign question score: err = %v, want validation error", err)
	}
}

func TestGradeResponseRequiresSubmission(t *testing.T) {
	start, end := activeWindow()
	f := newResponseFixture(t, start, end)
	ctx := context.Background()

	f.respSvc.StartResponse(ctx, f.student.ID, f.quiz.ID)

	_, err := f.respSvc.GradeResponse(ctx, f.instructor.ID, GradeInput{
		QuizID:    f.quiz.ID,
		StudentID: f.student.ID,
		Scores:    map[string]int{f.quiz.Questions[0].Question: 1},
	})
	if !httperr.IsKind(err, httperr.InvalidState) {
		t.Fatalf("grading a writing attempt: err = %v, want invalid state", err)
	}
}

func TestGetMyResultRequiresGradeRelease(t *testing.T) {
	start, end := activeWindow()
	f := newResponseFixture(t, start, end)
	ctx := context.Background()

	f.respSvc.StartResponse(ctx, f.student.ID, f.quiz.ID)
	f.respSvc.SubmitResponse(ctx, f.student.ID, f.quiz.ID)

	_, err := f.respSvc.GetMyResult(ctx, f.student.ID, f.quiz.ID)
	if !httperr.IsKind(err, httperr.InvalidState) {
		t.Fatalf("result before release: err = %v, want invalid state", err)
	}

	f.quizzes.quizzes[f.quiz.ID].IsGradeReleased = true
	resp, err := f.respSvc.GetMyResult(ctx, f.student.ID, f.quiz.ID)
	if err != nil {
		t.Fatalf("result after release: %v", err)
	}
	if resp.Student != f.student.ID {
		t.Errorf("result for %s, want %s", resp.Student, f.student.ID)
	}
}

func TestListResponsesInstructorOnly(t *testing.T) {
	start, end := activeWindow()
	f := newResponseFixture(t, start, end)
	ctx := context.Background()

	f.respSvc.StartResponse(ctx, f.student.ID, f.quiz.ID)

	responses, err := f.respSvc.ListResponses(ctx, f.instructor.ID, f.quiz.ID)
	if err != nil {
		t.Fatalf("listing responses: %v", err)
	}
	if len(responses) != 1 {
		t.Errorf("responses = %d, want 1", len(responses))
	}

	if _, err := f.respSvc.ListResponses(ctx, f.student.ID, f.quiz.ID); !httperr.IsKind(err, httperr.AccessDenied) {
		t.Errorf("student listing responses: err = %v, want access denied", err)
	}
}
