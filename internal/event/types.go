package event

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	QuizInvitation EventType = "quiz.invitation"
	QuizGraded     EventType = "quiz.graded"
	UserRegistered EventType = "user.registered"
	PasswordReset  EventType = "user.password_reset"
)

type BaseEvent struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// QuizInvitationEvent invites every listed address to a newly visible quiz.
type QuizInvitationEvent struct {
	BaseEvent
	CourseCode string    `json:"course_code"`
	CourseName string    `json:"course_name"`
	QuizName   string    `json:"quiz_name"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Emails     []string  `json:"emails"`
}

func NewQuizInvitationEvent(courseCode, courseName, quizName string, start, end time.Time, emails []string) *QuizInvitationEvent {
	return &QuizInvitationEvent{
		BaseEvent:  BaseEvent{Type: QuizInvitation, Timestamp: time.Now()},
		CourseCode: courseCode,
		CourseName: courseName,
		QuizName:   quizName,
		StartTime:  start,
		EndTime:    end,
		Emails:     emails,
	}
}

// GradedQuizEvent carries one student's final score notification.
type GradedQuizEvent struct {
	BaseEvent
	Email      string `json:"email"`
	Name       string `json:"name"`
	QuizName   string `json:"quiz_name"`
	CourseCode string `json:"course_code"`
	Score      int    `json:"score"`
	MaxScore   int    `json:"max_score"`
}

func NewGradedQuizEvent(email, name, quizName, courseCode string, score, maxScore int) *GradedQuizEvent {
	return &GradedQuizEvent{
		BaseEvent:  BaseEvent{Type: QuizGraded, Timestamp: time.Now()},
		Email:      email,
		Name:       name,
		QuizName:   quizName,
		CourseCode: courseCode,
		Score:      score,
		MaxScore:   maxScore,
	}
}

type UserRegisteredEvent struct {
	BaseEvent
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	VerificationCode string `json:"verification_code"`
}

func NewUserRegisteredEvent(userID, name, email, code string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent:        BaseEvent{Type: UserRegistered, Timestamp: time.Now()},
		UserID:           userID,
		Name:             name,
		Email:            email,
		VerificationCode: code,
	}
}

type PasswordResetEvent struct {
	BaseEvent
	Email string `json:"email"`
	Name  string `json:"name"`
	Code  string `json:"code"`
}

func NewPasswordResetEvent(email, name, code string) *PasswordResetEvent {
	return &PasswordResetEvent{
		BaseEvent: BaseEvent{Type: PasswordReset, Timestamp: time.Now()},
		Email:     email,
		Name:      name,
		Code:      code,
	}
}

func (e *QuizInvitationEvent) ToJSON() ([]byte, error) { return json.Marshal(e) }
func (e *GradedQuizEvent) ToJSON() ([]byte, error)     { return json.Marshal(e) }
func (e *UserRegisteredEvent) ToJSON() ([]byte, error) { return json.Marshal(e) }
func (e *PasswordResetEvent) ToJSON() ([]byte, error)  { return json.Marshal(e) }
