package models

import "time"

// CourseSession is one lecture/tutorial roster within a course.
type CourseSession struct {
	Students []string `bson:"students" json:"students"`
}

type Course struct {
	ID             string          `bson:"_id,omitempty" json:"id"`
	CourseCode     string          `bson:"course_code" json:"courseCode"`
	CourseSemester string          `bson:"course_semester" json:"courseSemester"`
	CourseName     string          `bson:"course_name" json:"courseName"`
	Instructor     string          `bson:"instructor" json:"instructor"`
	AccentColor    string          `bson:"accent_color" json:"accentColor"`
	Quizzes        []string        `bson:"quizzes" json:"quizzes"`
	Archived       bool            `bson:"archived" json:"archived"`
	Sessions       []CourseSession `bson:"sessions" json:"sessions"`
	CreatedAt      time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updated_at" json:"updatedAt"`
}

// EnrolledStudents flattens every session roster, deduplicated.
func (c *Course) EnrolledStudents() []string {
	seen := make(map[string]bool)
	var students []string
	for _, session := range c.Sessions {
		for _, id := range session.Students {
			if !seen[id] {
				seen[id] = true
				students = append(students, id)
			}
		}
	}
	return students
}

func (c *Course) HasStudent(userID string) bool {
	for _, session := range c.Sessions {
		for _, id := range session.Students {
			if id == userID {
				return true
			}
		}
	}
	return false
}
