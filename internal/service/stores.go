package service

import (
	"context"
	"errors"

	"iquiz-service/internal/httperr"
	"iquiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store interfaces are satisfied by the mongo repositories and by the
// in-memory fakes in tests. Services never touch collections directly.

type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, update bson.M) error
	AddCourse(ctx context.Context, id string, ref models.CourseRef) error
	RemoveCourse(ctx context.Context, id, courseID string) error
}

type CourseStore interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, id string, update bson.M) error
	AppendQuiz(ctx context.Context, id, quizID string) error
	RemoveQuiz(ctx context.Context, id, quizID string) error
	AddStudent(ctx context.Context, id string, sessionIndex int, studentID string) error
	RemoveStudent(ctx context.Context, id, studentID string) error
}

type QuizStore interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
	FindByNameInCourse(ctx context.Context, quizName, courseID string) (*models.Quiz, error)
	Create(ctx context.Context, quiz *models.Quiz) error
	Update(ctx context.Context, id string, update bson.M) error
	Delete(ctx context.Context, id string) error
}

type QuestionStore interface {
	FindByID(ctx context.Context, kind models.QuestionKind, id string) (*models.Question, error)
	Create(ctx context.Context, kind models.QuestionKind, question *models.Question) error
	Update(ctx context.Context, kind models.QuestionKind, id string, question *models.Question) error
	Delete(ctx context.Context, kind models.QuestionKind, id string) error
}

type ResponseStore interface {
	FindByQuizAndStudent(ctx context.Context, quizID, studentID string) (*models.QuizResponse, error)
	FindByQuiz(ctx context.Context, quizID string) ([]models.QuizResponse, error)
	Create(ctx context.Context, response *models.QuizResponse) error
	Update(ctx context.Context, id string, update bson.M) error
}

// notFound covers both a missing document and a malformed hex id, which the
// repositories surface unchanged.
func notFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, primitive.ErrInvalidHex)
}

func asHTTPErr(err error, fallback string) error {
	var e *httperr.Error
	if errors.As(err, &e) {
		return e
	}
	return httperr.Storef(err, "%s", fallback)
}
