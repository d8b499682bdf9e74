package service

import (
	"context"
	"log"
	"time"

	"iquiz-service/internal/db"
	"iquiz-service/internal/event"
	"iquiz-service/internal/httperr"
	"iquiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// QuizService drives the quiz lifecycle: draft -> released -> grades
// released. All multi-document writes run through the transaction runner so
// a failure never leaves orphaned question documents or a course pointing
// at a quiz that was never created.
type QuizService struct {
	users     UserStore
	courses   CourseStore
	quizzes   QuizStore
	questions QuestionStore
	responses ResponseStore
	publisher event.Publisher
	txn       db.TxnRunner
}

func NewQuizService(users UserStore, courses CourseStore, quizzes QuizStore, questions QuestionStore, responses ResponseStore, publisher event.Publisher, txn db.TxnRunner) *QuizService {
	return &QuizService{
		users:     users,
		courses:   courses,
		quizzes:   quizzes,
		questions: questions,
		responses: responses,
		publisher: publisher,
		txn:       txn,
	}
}

// QuestionPayload is one question in a create/update request: the kind tag,
// the document body, and (on update) the id of an existing document.
type QuestionPayload struct {
	ID       string              `json:"id,omitempty"`
	Type     models.QuestionKind `json:"type"`
	Question models.Question     `json:"question"`
}

type CreateQuizInput struct {
	QuizName  string            `json:"quizName"`
	IsDraft   bool              `json:"isDraft"`
	StartTime int64             `json:"startTime"` // epoch millis, 0 = unset
	EndTime   int64             `json:"endTime"`
	Course    string            `json:"course"`
	Questions []QuestionPayload `json:"questions"`
}

type UpdateQuizInput struct {
	QuizID    string            `json:"quizId"`
	QuizName  string            `json:"quizName"`
	StartTime int64             `json:"startTime"`
	EndTime   int64             `json:"endTime"`
	Questions []QuestionPayload `json:"questions"`
}

type QuizSummary struct {
	QuizID          string            `json:"quizId"`
	QuizName        string            `json:"quizName"`
	CourseID        string            `json:"courseId"`
	CourseCode      string            `json:"courseCode"`
	AccentColor     string            `json:"accentColor"`
	StartTime       time.Time         `json:"startTime"`
	EndTime         time.Time         `json:"endTime"`
	Status          models.QuizStatus `json:"status"`
	IsGradeReleased bool              `json:"isGradeReleased"`
	ResponseStatus  string            `json:"responseStatus,omitempty"`
}

type QuestionView struct {
	Type     models.QuestionKind `json:"type"`
	Question *models.Question    `json:"question"`
}

type QuizWithQuestions struct {
	QuizID     string         `json:"quizId"`
	QuizName   string         `json:"quizName"`
	CourseCode string         `json:"courseCode"`
	StartTime  time.Time      `json:"startTime"`
	EndTime    time.Time      `json:"endTime"`
	Questions  []QuestionView `json:"questions"`
}

func (s *QuizService) CreateQuiz(ctx context.Context, userID string, input CreateQuizInput) (*models.Quiz, error) {
	user, err := s.getInstructor(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.QuizName == "" || input.Course == "" || len(input.Questions) == 0 {
		return nil, httperr.Validationf("missing fields")
	}

	var start, end time.Time
	if !input.IsDraft {
		start, end, err = validateWindow(input.StartTime, input.EndTime)
		if err != nil {
			return nil, err
		}
	}

	course, err := s.getCourse(ctx, input.Course)
	if err != nil {
		return nil, err
	}
	if course.Instructor != user.ID {
		return nil, httperr.AccessDeniedf("instructor does not teach course")
	}

	if err := s.checkNameFree(ctx, input.QuizName, course.ID, ""); err != nil {
		return nil, err
	}

	// Validate every question before any document is written.
	for i := range input.Questions {
		q := &input.Questions[i].Question
		if q.MaxScore == 0 {
			q.MaxScore = 1
		}
		if err := q.Validate(input.Questions[i].Type); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	quiz := &models.Quiz{
		QuizName:  input.QuizName,
		IsDraft:   input.IsDraft,
		StartTime: start,
		EndTime:   end,
		Course:    course.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		refs := make([]models.QuizQuestionRef, 0, len(input.Questions))
		for i := range input.Questions {
			payload := &input.Questions[i]
			if err := s.questions.Create(ctx, payload.Type, &payload.Question); err != nil {
				return httperr.Storef(err, "error creating question")
			}
			refs = append(refs, models.QuizQuestionRef{
				Question: payload.Question.ID,
				Type:     payload.Type,
				MaxScore: payload.Question.MaxScore,
			})
		}
		quiz.Questions = refs
		if err := s.quizzes.Create(ctx, quiz); err != nil {
			return httperr.Storef(err, "error creating quiz")
		}
		return s.courses.AppendQuiz(ctx, course.ID, quiz.ID)
	})
	if err != nil {
		return nil, asHTTPErr(err, "error creating quiz")
	}

	if !input.IsDraft {
		s.sendInvitations(ctx, course, quiz, user.ID)
	}
	return quiz, nil
}

// ReleaseQuiz transitions a draft to released with a fixed time window and
// invites the course members.
func (s *QuizService) ReleaseQuiz(ctx context.Context, userID, quizID string, startMillis, endMillis int64) (*models.Quiz, error) {
	user, quiz, course, err := s.getOwnedQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsDraft {
		return nil, httperr.InvalidStatef("quiz is already released")
	}

	start, end, err := validateWindow(startMillis, endMillis)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.quizzes.Update(ctx, quiz.ID, bson.M{
		"is_draft":   false,
		"start_time": start,
		"end_time":   end,
		"updated_at": now,
	})
	if err != nil {
		return nil, httperr.Storef(err, "error releasing quiz")
	}

	quiz.IsDraft = false
	quiz.StartTime = start
	quiz.EndTime = end
	quiz.UpdatedAt = now

	s.sendInvitations(ctx, course, quiz, user.ID)
	return quiz, nil
}

// BasicUpdateQuiz renames and/or re-times a quiz without touching its
// question set.
func (s *QuizService) BasicUpdateQuiz(ctx context.Context, userID, quizID, newName string, startMillis, endMillis int64) error {
	_, quiz, _, err := s.getOwnedQuiz(ctx, userID, quizID)
	if err != nil {
		return err
	}

	if newName == "" {
		return httperr.Validationf("missing fields")
	}
	start, end, err := validateWindow(startMillis, endMillis)
	if err != nil {
		return err
	}

	if err := s.checkNameFree(ctx, newName, quiz.Course, quiz.ID); err != nil {
		return err
	}

	err = s.quizzes.Update(ctx, quiz.ID, bson.M{
		"quiz_name":  newName,
		"start_time": start,
		"end_time":   end,
		"updated_at": time.Now(),
	})
	if err != nil {
		return httperr.Storef(err, "error updating quiz")
	}
	return nil
}

// UpdateQuiz replaces the full question set. Payloads carrying the id of an
// existing question are updated in place; everything else is created new.
// Supplied order is preserved.
func (s *QuizService) UpdateQuiz(ctx context.Context, userID string, input UpdateQuizInput) error {
	_, quiz, _, err := s.getOwnedQuiz(ctx, userID, input.QuizID)
	if err != nil {
		return err
	}

	update := bson.M{"updated_at": time.Now()}

	if input.QuizName != "" && input.QuizName != quiz.QuizName {
		if err := s.checkNameFree(ctx, input.QuizName, quiz.Course, quiz.ID); err != nil {
			return err
		}
		update["quiz_name"] = input.QuizName
	}

	if input.StartTime != 0 || input.EndTime != 0 {
		start, end, err := validateWindow(input.StartTime, input.EndTime)
		if err != nil {
			return err
		}
		update["start_time"] = start
		update["end_time"] = end
	}

	for i := range input.Questions {
		q := &input.Questions[i].Question
		if q.MaxScore == 0 {
			q.MaxScore = 1
		}
		if err := q.Validate(input.Questions[i].Type); err != nil {
			return err
		}
	}

	return s.reconcileQuestions(ctx, quiz, input.Questions, update)
}

func (s *QuizService) reconcileQuestions(ctx context.Context, quiz *models.Quiz, payloads []QuestionPayload, update bson.M) error {
	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		refs := make([]models.QuizQuestionRef, 0, len(payloads))
		for i := range payloads {
			payload := &payloads[i]

			existing := false
			if payload.ID != "" {
				if _, err := s.questions.FindByID(ctx, payload.Type, payload.ID); err == nil {
					existing = true
				} else if !notFound(err) {
					return httperr.Storef(err, "error finding question")
				}
			}

			if existing {
				if err := s.questions.Update(ctx, payload.Type, payload.ID, &payload.Question); err != nil {
					return httperr.Storef(err, "error updating question")
				}
				refs = append(refs, models.QuizQuestionRef{
					Question: payload.ID,
					Type:     payload.Type,
					MaxScore: payload.Question.MaxScore,
				})
			} else {
				if err := s.questions.Create(ctx, payload.Type, &payload.Question); err != nil {
					return httperr.Storef(err, "error creating question")
				}
				refs = append(refs, models.QuizQuestionRef{
					Question: payload.Question.ID,
					Type:     payload.Type,
					MaxScore: payload.Question.MaxScore,
				})
			}
		}
		// Questions dropped from the set lose their documents too.
		kept := make(map[string]bool, len(refs))
		for _, ref := range refs {
			kept[ref.Question] = true
		}
		for _, old := range quiz.Questions {
			if kept[old.Question] {
				continue
			}
			if err := s.questions.Delete(ctx, old.Type, old.Question); err != nil {
				return httperr.Storef(err, "error deleting question")
			}
		}

		update["questions"] = refs
		return s.quizzes.Update(ctx, quiz.ID, update)
	})
	if err != nil {
		return asHTTPErr(err, "error updating quiz")
	}
	return nil
}

// DeleteDraftQuiz removes a quiz that was never released, along with its
// question documents and the course's reference to it.
func (s *QuizService) DeleteDraftQuiz(ctx context.Context, userID, quizID string) error {
	_, quiz, course, err := s.getOwnedQuiz(ctx, userID, quizID)
	if err != nil {
		return err
	}
	if !quiz.IsDraft {
		return httperr.InvalidStatef("only draft quizzes can be deleted")
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		for _, ref := range quiz.Questions {
			if err := s.questions.Delete(ctx, ref.Type, ref.Question); err != nil {
				return httperr.Storef(err, "error deleting question")
			}
		}
		if err := s.quizzes.Delete(ctx, quiz.ID); err != nil {
			return httperr.Storef(err, "error deleting quiz")
		}
		return s.courses.RemoveQuiz(ctx, course.ID, quiz.ID)
	})
	if err != nil {
		return asHTTPErr(err, "error deleting quiz")
	}
	return nil
}

// ReleaseQuizGrades publishes every enrolled student's score and flips the
// grade-released flag. The full precondition check runs before any side
// effect; a publish failure aborts with the flag still down, and the worker
// retries delivery of the events that did make it out.
func (s *QuizService) ReleaseQuizGrades(ctx context.Context, userID, quizID string) error {
	_, quiz, course, err := s.getOwnedQuiz(ctx, userID, quizID)
	if err != nil {
		return err
	}

	if !quiz.Ended(time.Now()) {
		return httperr.InvalidStatef("quiz has not ended yet")
	}
	if quiz.IsGradeReleased {
		return httperr.InvalidStatef("grades are already released")
	}

	responses, err := s.responses.FindByQuiz(ctx, quiz.ID)
	if err != nil {
		return httperr.Storef(err, "error finding quiz responses")
	}
	byStudent := make(map[string]*models.QuizResponse, len(responses))
	for i := range responses {
		resp := &responses[i]
		if resp.Status == models.ResponseSubmitted && resp.Graded != models.GradedFully {
			return httperr.IncompleteGradingf("not all submitted responses are fully graded")
		}
		byStudent[resp.Student] = resp
	}

	maxScore := quiz.TotalMaxScore()
	for _, studentID := range course.EnrolledStudents() {
		student, err := s.users.FindByID(ctx, studentID)
		if err != nil {
			return httperr.Storef(err, "error finding enrolled student")
		}
		score := 0
		if resp, ok := byStudent[studentID]; ok && resp.Status == models.ResponseSubmitted {
			score = resp.TotalScore()
		}
		err = s.publisher.PublishGradedQuiz(ctx, student.Email, student.FullName(), quiz.QuizName, course.CourseCode, score, maxScore)
		if err != nil {
			return httperr.Storef(err, "error publishing graded quiz notification")
		}
	}

	err = s.quizzes.Update(ctx, quiz.ID, bson.M{
		"is_grade_released": true,
		"updated_at":        time.Now(),
	})
	if err != nil {
		return httperr.Storef(err, "error releasing quiz grades")
	}
	return nil
}

// GetMyQuizzes fans out over every course the caller belongs to and
// classifies each quiz against the wall clock. Drafts only show up for
// instructors; students get their own response status annotated.
func (s *QuizService) GetMyQuizzes(ctx context.Context, userID string, status models.QuizStatus) ([]QuizSummary, error) {
	if !status.Valid() {
		return nil, httperr.Validationf("invalid quiz status %s", status)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if status == models.QuizStatusDraft && !user.IsInstructor() {
		return nil, httperr.AccessDeniedf("only instructors have draft quizzes")
	}

	now := time.Now()
	summaries := []QuizSummary{}
	for _, ref := range user.Courses {
		course, err := s.getCourse(ctx, ref.CourseID)
		if err != nil {
			return nil, err
		}
		for _, quizID := range course.Quizzes {
			quiz, err := s.getQuizByID(ctx, quizID)
			if err != nil {
				return nil, err
			}
			if quiz.IsDraft && !user.IsInstructor() {
				continue
			}
			if quiz.StatusAt(now) != status {
				continue
			}

			summary := QuizSummary{
				QuizID:          quiz.ID,
				QuizName:        quiz.QuizName,
				CourseID:        course.ID,
				CourseCode:      course.CourseCode,
				AccentColor:     ref.AccentColor,
				StartTime:       quiz.StartTime,
				EndTime:         quiz.EndTime,
				Status:          status,
				IsGradeReleased: quiz.IsGradeReleased,
			}
			if !user.IsInstructor() {
				summary.ResponseStatus = s.responseStatusFor(ctx, quiz.ID, user.ID)
			}
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

func (s *QuizService) responseStatusFor(ctx context.Context, quizID, studentID string) string {
	resp, err := s.responses.FindByQuizAndStudent(ctx, quizID, studentID)
	if err != nil {
		return "unstarted"
	}
	return string(resp.Status)
}

// GetQuiz is the instructor-only full fetch, answers included.
func (s *QuizService) GetQuiz(ctx context.Context, userID, quizID string) (*models.Quiz, error) {
	_, quiz, _, err := s.getOwnedQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

// GetQuizWithQuestions returns the quiz with denormalized question bodies
// for any course member. Correct answers and marking criteria are stripped
// unless the caller instructs the course or grades are already out.
func (s *QuizService) GetQuizWithQuestions(ctx context.Context, userID, quizID string) (*QuizWithQuestions, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.getQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	course, err := s.getCourse(ctx, quiz.Course)
	if err != nil {
		return nil, err
	}
	if course.Instructor != user.ID && !user.MemberOf(course.ID) {
		return nil, httperr.AccessDeniedf("not a member of this course")
	}

	revealAnswers := course.Instructor == user.ID || quiz.IsGradeReleased

	questions := make([]QuestionView, 0, len(quiz.Questions))
	for _, ref := range quiz.Questions {
		question, err := s.questions.FindByID(ctx, ref.Type, ref.Question)
		if err != nil {
			if notFound(err) {
				return nil, httperr.NotFoundf("invalid question id")
			}
			return nil, httperr.Storef(err, "error finding question")
		}
		if !revealAnswers {
			question = question.Redacted()
		}
		questions = append(questions, QuestionView{Type: ref.Type, Question: question})
	}

	return &QuizWithQuestions{
		QuizID:     quiz.ID,
		QuizName:   quiz.QuizName,
		CourseCode: course.CourseCode,
		StartTime:  quiz.StartTime,
		EndTime:    quiz.EndTime,
		Questions:  questions,
	}, nil
}

// --- helpers ---

func (s *QuizService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, httperr.NotFoundf("invalid user")
		}
		return nil, httperr.Storef(err, "error finding user")
	}
	return user, nil
}

func (s *QuizService) getInstructor(ctx context.Context, id string) (*models.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsInstructor() {
		return nil, httperr.AccessDeniedf("invalid user type")
	}
	return user, nil
}

func (s *QuizService) getCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, httperr.NotFoundf("invalid course id")
		}
		return nil, httperr.Storef(err, "error finding course")
	}
	return course, nil
}

func (s *QuizService) getQuizByID(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := s.quizzes.FindByID(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, httperr.NotFoundf("invalid quiz id")
		}
		return nil, httperr.Storef(err, "error finding quiz")
	}
	return quiz, nil
}

// getOwnedQuiz resolves caller, quiz and course and enforces that the
// caller is the instructor of the quiz's course.
func (s *QuizService) getOwnedQuiz(ctx context.Context, userID, quizID string) (*models.User, *models.Quiz, *models.Course, error) {
	user, err := s.getInstructor(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	quiz, err := s.getQuizByID(ctx, quizID)
	if err != nil {
		return nil, nil, nil, err
	}
	course, err := s.getCourse(ctx, quiz.Course)
	if err != nil {
		return nil, nil, nil, err
	}
	if course.Instructor != user.ID {
		return nil, nil, nil, httperr.AccessDeniedf("instructor does not teach course")
	}
	return user, quiz, course, nil
}

func (s *QuizService) checkNameFree(ctx context.Context, quizName, courseID, excludeQuizID string) error {
	existing, err := s.quizzes.FindByNameInCourse(ctx, quizName, courseID)
	if err != nil {
		if notFound(err) {
			return nil
		}
		return httperr.Storef(err, "error finding existing quiz")
	}
	if existing.ID != excludeQuizID {
		return httperr.Validationf("quiz already exists")
	}
	return nil
}

func validateWindow(startMillis, endMillis int64) (time.Time, time.Time, error) {
	if startMillis == 0 || endMillis == 0 {
		return time.Time{}, time.Time{}, httperr.Validationf("missing start and/or end time")
	}
	if startMillis >= endMillis {
		return time.Time{}, time.Time{}, httperr.Validationf("invalid start and/or end time")
	}
	return time.UnixMilli(startMillis), time.UnixMilli(endMillis), nil
}

// sendInvitations notifies everyone enrolled in the course except the
// sender. Publishing failures are logged, not surfaced: the quiz itself is
// already visible.
func (s *QuizService) sendInvitations(ctx context.Context, course *models.Course, quiz *models.Quiz, senderID string) {
	var emails []string
	for _, studentID := range course.EnrolledStudents() {
		if studentID == senderID {
			continue
		}
		student, err := s.users.FindByID(ctx, studentID)
		if err != nil {
			log.Printf("Warning: could not resolve enrolled student %s: %v", studentID, err)
			continue
		}
		emails = append(emails, student.Email)
	}

	err := s.publisher.PublishQuizInvitation(ctx, course.CourseCode, course.CourseName, quiz.QuizName, quiz.StartTime, quiz.EndTime, emails)
	if err != nil {
		log.Printf("Warning: failed to publish quiz invitation for %s: %v", quiz.QuizName, err)
	}
}
