package service

import (
	"context"
	"time"

	"iquiz-service/internal/httperr"
	"iquiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ResponseService covers the student side of a quiz attempt plus the
// instructor's grading of it. One attempt per (quiz, student); the writing
// document is created lazily on first open and survives reloads.
type ResponseService struct {
	users     UserStore
	courses   CourseStore
	quizzes   QuizStore
	responses ResponseStore
}

func NewResponseService(users UserStore, courses CourseStore, quizzes QuizStore, responses ResponseStore) *ResponseService {
	return &ResponseService{users: users, courses: courses, quizzes: quizzes, responses: responses}
}

type GradeInput struct {
	QuizID    string         `json:"quizId"`
	StudentID string         `json:"studentId"`
	Scores    map[string]int `json:"scores"` // question id -> score
}

// StartResponse returns the caller's attempt at a quiz, creating the
// writing document on first call. Only works inside the quiz window.
func (s *ResponseService) StartResponse(ctx context.Context, userID, quizID string) (*models.QuizResponse, error) {
	_, quiz, err := s.getActiveQuizForStudent(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}

	resp, err := s.responses.FindByQuizAndStudent(ctx, quizID, userID)
	if err == nil {
		return resp, nil
	}
	if !notFound(err) {
		return nil, httperr.Storef(err, "error finding quiz response")
	}

	blanks := make([]models.QuestionResponse, 0, len(quiz.Questions))
	for _, ref := range quiz.Questions {
		blanks = append(blanks, models.QuestionResponse{
			Question: ref.Question,
			Response: []string{},
			Score:    models.UngradedScore,
		})
	}

	resp = &models.QuizResponse{
		Quiz:              quiz.ID,
		Student:           userID,
		Status:            models.ResponseWriting,
		Graded:            models.GradedNone,
		QuestionResponses: blanks,
		StartedAt:         time.Now(),
	}
	if err := s.responses.Create(ctx, resp); err != nil {
		// The unique (quiz, student) index catches a concurrent first open;
		// fall back to the winner's document.
		if existing, findErr := s.responses.FindByQuizAndStudent(ctx, quizID, userID); findErr == nil {
			return existing, nil
		}
		return nil, httperr.Storef(err, "error creating quiz response")
	}
	return resp, nil
}

// SaveResponse overwrites the attempt's answers wholesale with whatever the
// client sent. Answers for questions not on the quiz are rejected.
func (s *ResponseService) SaveResponse(ctx context.Context, userID, quizID string, answers []models.QuestionResponse) (*models.QuizResponse, error) {
	_, quiz, err := s.getActiveQuizForStudent(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	resp, err := s.getWritingResponse(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	onQuiz := make(map[string]bool, len(quiz.Questions))
	for _, ref := range quiz.Questions {
		onQuiz[ref.Question] = true
	}

	merged := make([]models.QuestionResponse, 0, len(answers))
	for _, ans := range answers {
		if !onQuiz[ans.Question] {
			return nil, httperr.Validationf("response references a question not on this quiz")
		}
		if ans.Response == nil {
			ans.Response = []string{}
		}
		ans.Score = models.UngradedScore
		merged = append(merged, ans)
	}

	err = s.responses.Update(ctx, resp.ID, bson.M{"question_responses": merged})
	if err != nil {
		return nil, httperr.Storef(err, "error saving quiz response")
	}
	resp.QuestionResponses = merged
	return resp, nil
}

// SubmitResponse finalizes the attempt. Submission is one-way.
func (s *ResponseService) SubmitResponse(ctx context.Context, userID, quizID string) (*models.QuizResponse, error) {
	_, _, err := s.getActiveQuizForStudent(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	resp, err := s.getWritingResponse(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.responses.Update(ctx, resp.ID, bson.M{
		"status":       models.ResponseSubmitted,
		"submitted_at": now,
	})
	if err != nil {
		return nil, httperr.Storef(err, "error submitting quiz response")
	}
	resp.Status = models.ResponseSubmitted
	resp.SubmittedAt = now
	return resp, nil
}

// GradeResponse records per-question scores on a submitted attempt and
// recomputes the aggregate grading state. Partial grading is fine; each
// call only touches the questions it names.
func (s *ResponseService) GradeResponse(ctx context.Context, userID string, input GradeInput) (*models.QuizResponse, error) {
	quiz, err := s.getOwnedQuiz(ctx, userID, input.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz.IsGradeReleased {
		return nil, httperr.InvalidStatef("grades are already released")
	}

	resp, err := s.responses.FindByQuizAndStudent(ctx, input.QuizID, input.StudentID)
	if err != nil {
		if notFound(err) {
			return nil, httperr.NotFoundf("no response found for this student")
		}
		return nil, httperr.Storef(err, "error finding quiz response")
	}
	if resp.Status != models.ResponseSubmitted {
		return nil, httperr.InvalidStatef("response has not been submitted")
	}

	maxByQuestion := make(map[string]int, len(quiz.Questions))
	for _, ref := range quiz.Questions {
		maxByQuestion[ref.Question] = ref.MaxScore
	}

	for questionID, score := range input.Scores {
		maxScore, ok := maxByQuestion[questionID]
		if !ok {
			return nil, httperr.Validationf("score references a question not on this quiz")
		}
		if score < 0 || score > maxScore {
			return nil, httperr.Validationf("score for question %s must be between 0 and %d", questionID, maxScore)
		}
		found := false
		for i := range resp.QuestionResponses {
			if resp.QuestionResponses[i].Question == questionID {
				resp.QuestionResponses[i].Score = score
				found = true
				break
			}
		}
		if !found {
			// The student never answered this question; record a standalone
			// score so grading can still reach "fully".
			resp.QuestionResponses = append(resp.QuestionResponses, models.QuestionResponse{
				Question: questionID,
				Response: []string{},
				Score:    score,
			})
		}
	}

	resp.Graded = resp.GradingStateOf()
	err = s.responses.Update(ctx, resp.ID, bson.M{
		"question_responses": resp.QuestionResponses,
		"graded":             resp.Graded,
	})
	if err != nil {
		return nil, httperr.Storef(err, "error grading quiz response")
	}
	return resp, nil
}

// ListResponses returns every attempt at a quiz for the instructor's
// grading view.
func (s *ResponseService) ListResponses(ctx context.Context, userID, quizID string) ([]models.QuizResponse, error) {
	_, err := s.getOwnedQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.FindByQuiz(ctx, quizID)
	if err != nil {
		return nil, httperr.Storef(err, "error finding quiz responses")
	}
	return responses, nil
}

// GetMyResult returns the caller's own graded attempt. Available only once
// the instructor has released grades.
func (s *ResponseService) GetMyResult(ctx context.Context, userID, quizID string) (*models.QuizResponse, error) {
	user, err := s.getStudent(ctx, userID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !user.MemberOf(quiz.Course) {
		return nil, httperr.AccessDeniedf("not a member of this course")
	}
	if !quiz.IsGradeReleased {
		return nil, httperr.InvalidStatef("grades have not been released")
	}

	resp, err := s.responses.FindByQuizAndStudent(ctx, quizID, userID)
	if err != nil {
		if notFound(err) {
			return nil, httperr.NotFoundf("no response found for this quiz")
		}
		return nil, httperr.Storef(err, "error finding quiz response")
	}
	return resp, nil
}

// --- helpers ---

func (s *ResponseService) getStudent(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, httperr.NotFoundf("invalid user")
		}
		return nil, httperr.Storef(err, "error finding user")
	}
	if user.IsInstructor() {
		return nil, httperr.AccessDeniedf("invalid user type")
	}
	return user, nil
}

func (s *ResponseService) getQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := s.quizzes.FindByID(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, httperr.NotFoundf("invalid quiz id")
		}
		return nil, httperr.Storef(err, "error finding quiz")
	}
	return quiz, nil
}

// getActiveQuizForStudent checks membership and the quiz window in one go.
func (s *ResponseService) getActiveQuizForStudent(ctx context.Context, userID, quizID string) (*models.User, *models.Quiz, error) {
	user, err := s.getStudent(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	if !user.MemberOf(quiz.Course) {
		return nil, nil, httperr.AccessDeniedf("not a member of this course")
	}
	switch quiz.StatusAt(time.Now()) {
	case models.QuizStatusActive:
		return user, quiz, nil
	case models.QuizStatusUpcoming:
		return nil, nil, httperr.InvalidStatef("quiz has not started yet")
	default:
		return nil, nil, httperr.InvalidStatef("quiz is not active")
	}
}

func (s *ResponseService) getWritingResponse(ctx context.Context, quizID, studentID string) (*models.QuizResponse, error) {
	resp, err := s.responses.FindByQuizAndStudent(ctx, quizID, studentID)
	if err != nil {
		if notFound(err) {
			return nil, httperr.NotFoundf("no response in progress for this quiz")
		}
		return nil, httperr.Storef(err, "error finding quiz response")
	}
	if resp.Status != models.ResponseWriting {
		return nil, httperr.InvalidStatef("response has already been submitted")
	}
	return resp, nil
}

func (s *ResponseService) getOwnedQuiz(ctx context.Context, userID, quizID string) (*models.Quiz, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if notFound(err) {
			return nil, httperr.NotFoundf("invalid user")
		}
		return nil, httperr.Storef(err, "error finding user")
	}
	if !user.IsInstructor() {
		return nil, httperr.AccessDeniedf("invalid user type")
	}
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.FindByID(ctx, quiz.Course)
	if err != nil {
		if notFound(err) {
			return nil, httperr.NotFoundf("invalid course id")
		}
		return nil, httperr.Storef(err, "error finding course")
	}
	if course.Instructor != user.ID {
		return nil, httperr.AccessDeniedf("instructor does not teach course")
	}
	return quiz, nil
}
