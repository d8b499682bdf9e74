package service

import (
	"context"
	"fmt"
	"time"

	"iquiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory stores backing the service tests. Update applies the same
// bson.M field names the mongo repositories use, so the services exercise
// identical update documents against both.

type fakeUserStore struct {
	users  map[string]*models.User
	nextID int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (s *fakeUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	s.nextID++
	user.ID = fmt.Sprintf("user-%d", s.nextID)
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) Update(ctx context.Context, id string, update bson.M) error {
	user, ok := s.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for key, value := range update {
		switch key {
		case "verified":
			user.Verified = value.(bool)
		case "password_hash":
			user.PasswordHash = value.(string)
		case "password_reset_code":
			user.PasswordResetCode = value.(string)
		case "updated_at":
			user.UpdatedAt = value.(time.Time)
		}
	}
	return nil
}

func (s *fakeUserStore) AddCourse(ctx context.Context, id string, ref models.CourseRef) error {
	user, ok := s.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.Courses = append(user.Courses, ref)
	return nil
}

func (s *fakeUserStore) RemoveCourse(ctx context.Context, id, courseID string) error {
	user, ok := s.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	kept := user.Courses[:0]
	for _, ref := range user.Courses {
		if ref.CourseID != courseID {
			kept = append(kept, ref)
		}
	}
	user.Courses = kept
	return nil
}

type fakeCourseStore struct {
	courses map[string]*models.Course
	nextID  int
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{courses: map[string]*models.Course{}}
}

func (s *fakeCourseStore) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := s.courses[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *course
	return &copied, nil
}

func (s *fakeCourseStore) Create(ctx context.Context, course *models.Course) error {
	s.nextID++
	course.ID = fmt.Sprintf("course-%d", s.nextID)
	copied := *course
	s.courses[course.ID] = &copied
	return nil
}

func (s *fakeCourseStore) Update(ctx context.Context, id string, update bson.M) error {
	course, ok := s.courses[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for key, value := range update {
		switch key {
		case "archived":
			course.Archived = value.(bool)
		case "updated_at":
			course.UpdatedAt = value.(time.Time)
		}
	}
	return nil
}

func (s *fakeCourseStore) AppendQuiz(ctx context.Context, id, quizID string) error {
	course, ok := s.courses[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	course.Quizzes = append(course.Quizzes, quizID)
	return nil
}

func (s *fakeCourseStore) RemoveQuiz(ctx context.Context, id, quizID string) error {
	course, ok := s.courses[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	kept := course.Quizzes[:0]
	for _, q := range course.Quizzes {
		if q != quizID {
			kept = append(kept, q)
		}
	}
	course.Quizzes = kept
	return nil
}

func (s *fakeCourseStore) AddStudent(ctx context.Context, id string, sessionIndex int, studentID string) error {
	course, ok := s.courses[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	course.Sessions[sessionIndex].Students = append(course.Sessions[sessionIndex].Students, studentID)
	return nil
}

func (s *fakeCourseStore) RemoveStudent(ctx context.Context, id, studentID string) error {
	course, ok := s.courses[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for i := range course.Sessions {
		kept := course.Sessions[i].Students[:0]
		for _, sid := range course.Sessions[i].Students {
			if sid != studentID {
				kept = append(kept, sid)
			}
		}
		course.Sessions[i].Students = kept
	}
	return nil
}

type fakeQuizStore struct {
	quizzes map[string]*models.Quiz
	nextID  int
}

func newFakeQuizStore() *fakeQuizStore {
	return &fakeQuizStore{quizzes: map[string]*models.Quiz{}}
}

func (s *fakeQuizStore) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, ok := s.quizzes[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *quiz
	return &copied, nil
}

func (s *fakeQuizStore) FindByNameInCourse(ctx context.Context, quizName, courseID string) (*models.Quiz, error) {
	for _, quiz := range s.quizzes {
		if quiz.QuizName == quizName && quiz.Course == courseID {
			copied := *quiz
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *fakeQuizStore) Create(ctx context.Context, quiz *models.Quiz) error {
	s.nextID++
	quiz.ID = fmt.Sprintf("quiz-%d", s.nextID)
	copied := *quiz
	s.quizzes[quiz.ID] = &copied
	return nil
}

func (s *fakeQuizStore) Update(ctx context.Context, id string, update bson.M) error {
	quiz, ok := s.quizzes[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for key, value := range update {
		switch key {
		case "quiz_name":
			quiz.QuizName = value.(string)
		case "is_draft":
			quiz.IsDraft = value.(bool)
		case "start_time":
			quiz.StartTime = value.(time.Time)
		case "end_time":
			quiz.EndTime = value.(time.Time)
		case "is_grade_released":
			quiz.IsGradeReleased = value.(bool)
		case "questions":
			quiz.Questions = value.([]models.QuizQuestionRef)
		case "updated_at":
			quiz.UpdatedAt = value.(time.Time)
		}
	}
	return nil
}

func (s *fakeQuizStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.quizzes[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.quizzes, id)
	return nil
}

type fakeQuestionStore struct {
	questions map[models.QuestionKind]map[string]*models.Question
	nextID    int
}

func newFakeQuestionStore() *fakeQuestionStore {
	store := &fakeQuestionStore{questions: map[models.QuestionKind]map[string]*models.Question{}}
	for _, kind := range models.QuestionKinds {
		store.questions[kind] = map[string]*models.Question{}
	}
	return store
}

func (s *fakeQuestionStore) FindByID(ctx context.Context, kind models.QuestionKind, id string) (*models.Question, error) {
	question, ok := s.questions[kind][id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *question
	return &copied, nil
}

func (s *fakeQuestionStore) Create(ctx context.Context, kind models.QuestionKind, question *models.Question) error {
	s.nextID++
	question.ID = fmt.Sprintf("question-%d", s.nextID)
	copied := *question
	s.questions[kind][question.ID] = &copied
	return nil
}

func (s *fakeQuestionStore) Update(ctx context.Context, kind models.QuestionKind, id string, question *models.Question) error {
	if _, ok := s.questions[kind][id]; !ok {
		return mongo.ErrNoDocuments
	}
	copied := *question
	copied.ID = id
	s.questions[kind][id] = &copied
	return nil
}

func (s *fakeQuestionStore) Delete(ctx context.Context, kind models.QuestionKind, id string) error {
	if _, ok := s.questions[kind][id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.questions[kind], id)
	return nil
}

type fakeResponseStore struct {
	responses map[string]*models.QuizResponse
	nextID    int
}

func newFakeResponseStore() *fakeResponseStore {
	return &fakeResponseStore{responses: map[string]*models.QuizResponse{}}
}

func (s *fakeResponseStore) FindByQuizAndStudent(ctx context.Context, quizID, studentID string) (*models.QuizResponse, error) {
	for _, resp := range s.responses {
		if resp.Quiz == quizID && resp.Student == studentID {
			copied := *resp
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *fakeResponseStore) FindByQuiz(ctx context.Context, quizID string) ([]models.QuizResponse, error) {
	var responses []models.QuizResponse
	for _, resp := range s.responses {
		if resp.Quiz == quizID {
			responses = append(responses, *resp)
		}
	}
	return responses, nil
}

func (s *fakeResponseStore) Create(ctx context.Context, response *models.QuizResponse) error {
	// Mirror the unique (quiz, student) index.
	for _, existing := range s.responses {
		if existing.Quiz == response.Quiz && existing.Student == response.Student {
			return fmt.Errorf("duplicate key error")
		}
	}
	s.nextID++
	response.ID = fmt.Sprintf("response-%d", s.nextID)
	copied := *response
	s.responses[response.ID] = &copied
	return nil
}

func (s *fakeResponseStore) Update(ctx context.Context, id string, update bson.M) error {
	resp, ok := s.responses[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for key, value := range update {
		switch key {
		case "status":
			resp.Status = value.(models.ResponseStatus)
		case "graded":
			resp.Graded = value.(models.GradingState)
		case "question_responses":
			resp.QuestionResponses = value.([]models.QuestionResponse)
		case "submitted_at":
			resp.SubmittedAt = value.(time.Time)
		}
	}
	return nil
}

// fakeTxn runs the callback directly; transactional atomicity is a store
// concern the service tests don't exercise.
type fakeTxn struct{}

func (fakeTxn) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type publishedEvent struct {
	kind   string
	email  string
	score  int
	max    int
	emails []string
}

type fakePublisher struct {
	events  []publishedEvent
	failAll bool
}

func (p *fakePublisher) PublishQuizInvitation(ctx context.Context, courseCode, courseName, quizName string, start, end time.Time, emails []string) error {
	if p.failAll {
		return fmt.Errorf("publish failed")
	}
	p.events = append(p.events, publishedEvent{kind: "invitation", emails: emails})
	return nil
}

func (p *fakePublisher) PublishGradedQuiz(ctx context.Context, email, name, quizName, courseCode string, score, maxScore int) error {
	if p.failAll {
		return fmt.Errorf("publish failed")
	}
	p.events = append(p.events, publishedEvent{kind: "graded", email: email, score: score, max: maxScore})
	return nil
}

func (p *fakePublisher) PublishUserRegistered(ctx context.Context, userID, name, email, verificationCode string) error {
	if p.failAll {
		return fmt.Errorf("publish failed")
	}
	p.events = append(p.events, publishedEvent{kind: "registered", email: email})
	return nil
}

func (p *fakePublisher) PublishPasswordReset(ctx context.Context, email, name, code string) error {
	if p.failAll {
		return fmt.Errorf("publish failed")
	}
	p.events = append(p.events, publishedEvent{kind: "password_reset", email: email})
	return nil
}

func (p *fakePublisher) Close() error { return nil }
