package service

import (
	"context"
	"time"

	"iquiz-service/internal/db"
	"iquiz-service/internal/httperr"
	"iquiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

// CourseService manages courses and their rosters. Enrollment touches two
// documents (the course roster and the user's course list), so it runs in a
// transaction to keep the two sides consistent.
type CourseService struct {
	users   UserStore
	courses CourseStore
	txn     db.TxnRunner
}

func NewCourseService(users UserStore, courses CourseStore, txn db.TxnRunner) *CourseService {
	return &CourseService{users: users, courses: courses, txn: txn}
}

type CreateCourseInput struct {
	CourseCode     string `json:"courseCode"`
	CourseSemester string `json:"courseSemester"`
	CourseName     string `json:"courseName"`
	AccentColor    string `json:"accentColor"`
	SessionCount   int    `json:"sessionCount"`
}

func (s *CourseService) CreateCourse(ctx context.Context, userID string, input CreateCourseInput) (*models.Course, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsInstructor() {
		return nil, httperr.AccessDeniedf("invalid user type")
	}

	if input.CourseCode == "" || input.CourseSemester == "" || input.CourseName == "" {
		return nil, httperr.Validationf("missing fields")
	}
	if input.SessionCount <= 0 {
		input.SessionCount = 1
	}

	sessions := make([]models.CourseSession, input.SessionCount)
	for i := range sessions {
		sessions[i].Students = []string{}
	}

	now := time.Now()
	course := &models.Course{
		CourseCode:     input.CourseCode,
		CourseSemester: input.CourseSemester,
		CourseName:     input.CourseName,
		Instructor:     user.ID,
		AccentColor:    input.AccentColor,
		Quizzes:        []string{},
		Sessions:       sessions,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.courses.Create(ctx, course); err != nil {
			return httperr.Storef(err, "error creating course")
		}
		return s.users.AddCourse(ctx, user.ID, models.CourseRef{
			CourseID:    course.ID,
			AccentColor: input.AccentColor,
		})
	})
	if err != nil {
		return nil, asHTTPErr(err, "error creating course")
	}
	return course, nil
}

// Enroll adds a student to one of the course's session rosters and mirrors
// the membership on the user document.
func (s *CourseService) Enroll(ctx context.Context, userID, courseID string, sessionIndex int, accentColor string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsInstructor() {
		return httperr.AccessDeniedf("instructors cannot enroll in courses")
	}

	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if course.Archived {
		return httperr.InvalidStatef("course is archived")
	}
	if sessionIndex < 0 || sessionIndex >= len(course.Sessions) {
		return httperr.Validationf("invalid session index")
	}
	if user.MemberOf(course.ID) || course.HasStudent(user.ID) {
		return httperr.Validationf("already enrolled in this course")
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.courses.AddStudent(ctx, course.ID, sessionIndex, user.ID); err != nil {
			return httperr.Storef(err, "error adding student to course")
		}
		return s.users.AddCourse(ctx, user.ID, models.CourseRef{
			CourseID:    course.ID,
			AccentColor: accentColor,
		})
	})
	if err != nil {
		return asHTTPErr(err, "error enrolling in course")
	}
	return nil
}

// Drop removes the student from every session roster and from their own
// course list.
func (s *CourseService) Drop(ctx context.Context, userID, courseID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if course.Instructor == user.ID {
		return httperr.InvalidStatef("instructors cannot drop their own course")
	}
	if !user.MemberOf(course.ID) {
		return httperr.Validationf("not enrolled in this course")
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.courses.RemoveStudent(ctx, course.ID, user.ID); err != nil {
			return httperr.Storef(err, "error removing student from course")
		}
		return s.users.RemoveCourse(ctx, user.ID, course.ID)
	})
	if err != nil {
		return asHTTPErr(err, "error dropping course")
	}
	return nil
}

type CourseSummary struct {
	CourseID       string `json:"courseId"`
	CourseCode     string `json:"courseCode"`
	CourseSemester string `json:"courseSemester"`
	CourseName     string `json:"courseName"`
	AccentColor    string `json:"accentColor"`
	Archived       bool   `json:"archived"`
	QuizCount      int    `json:"quizCount"`
}

// CoursesForUser returns the caller's dashboard list with their per-course
// accent colors.
func (s *CourseService) CoursesForUser(ctx context.Context, userID string) ([]CourseSummary, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := []CourseSummary{}
	for _, ref := range user.Courses {
		course, err := s.getCourse(ctx, ref.CourseID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, CourseSummary{
			CourseID:       course.ID,
			CourseCode:     course.CourseCode,
			CourseSemester: course.CourseSemester,
			CourseName:     course.CourseName,
			AccentColor:    ref.AccentColor,
			Archived:       course.Archived,
			QuizCount:      len(course.Quizzes),
		})
	}
	return summaries, nil
}

// GetCourse returns the full course document for members and the
// instructor.
func (s *CourseService) GetCourse(ctx context.Context, userID, courseID string) (*models.Course, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.Instructor != user.ID && !user.MemberOf(course.ID) {
		return nil, httperr.AccessDeniedf("not a member of this course")
	}
	return course, nil
}

// Archive freezes a course at semester end. Quizzes and grades stay
// readable; enrollment closes.
func (s *CourseService) Archive(ctx context.Context, userID, courseID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if course.Instructor != user.ID {
		return httperr.AccessDeniedf("instructor does not teach course")
	}
	if course.Archived {
		return httperr.InvalidStatef("course is already archived")
	}

	err = s.courses.Update(ctx, course.ID, bson.M{
		"archived":   true,
		"updated_at": time.Now(),
	})
	if err != nil {
		return httperr.Storef(err, "error archiving course")
	}
	return nil
}

func (s *CourseService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, httperr.NotFoundf("invalid user")
		}
		return nil, httperr.Storef(err, "error finding user")
	}
	return user, nil
}

func (s *CourseService) getCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, httperr.NotFoundf("invalid course id")
		}
		return nil, httperr.Storef(err, "error finding course")
	}
	return course, nil
}
