package models

import "time"

type UserType string

const (
	UserTypeStudent    UserType = "student"
	UserTypeInstructor UserType = "instructor"
)

func (t UserType) Valid() bool {
	return t == UserTypeStudent || t == UserTypeInstructor
}

// CourseRef is a user's membership entry: the course plus the accent color
// the user picked for it in the dashboard.
type CourseRef struct {
	CourseID    string `bson:"course_id" json:"courseId"`
	AccentColor string `bson:"accent_color" json:"accentColor"`
}

type User struct {
	ID                    string      `bson:"_id,omitempty" json:"id"`
	Type                  UserType    `bson:"type" json:"type"`
	FirstName             string      `bson:"first_name" json:"firstName"`
	LastName              string      `bson:"last_name" json:"lastName"`
	Email                 string      `bson:"email" json:"email"`
	PasswordHash          string      `bson:"password_hash" json:"-"`
	Verified              bool        `bson:"verified" json:"verified"`
	EmailVerificationCode string      `bson:"email_verification_code" json:"-"`
	PasswordResetCode     string      `bson:"password_reset_code,omitempty" json:"-"`
	Courses               []CourseRef `bson:"courses" json:"courses"`
	CreatedAt             time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt             time.Time   `bson:"updated_at" json:"updatedAt"`
}

func (u *User) IsInstructor() bool {
	return u.Type == UserTypeInstructor
}

func (u *User) MemberOf(courseID string) bool {
	for _, ref := range u.Courses {
		if ref.CourseID == courseID {
			return true
		}
	}
	return false
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
