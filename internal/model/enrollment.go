package model

import (
	"time"

	"gorm.io/datatypes"
)

type EnrollmentStatus string

const (
	EnrollmentInProgress EnrollmentStatus = "in_progress"
	EnrollmentCompleted  EnrollmentStatus = "completed"
)

// Enrollment ties a user to a course. The composite unique index makes the
// at-most-one-enrollment-per-(user,course) invariant a property of the
// store rather than a check-then-insert in the service: concurrent enrolls
// collide on the index and the loser surfaces as a duplicate-key error.
// swagger:model Enrollment
type Enrollment struct {
	UUIDBase
	UserID            string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_course" json:"user_id"`
	CourseTypeID      string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_course" json:"course_type_id"`
	EnrollmentDate    time.Time        `gorm:"not null" json:"enrollment_date"`
	CompletionDate    *time.Time       `json:"completion_date,omitempty"`
	CertificateIssued bool             `gorm:"default:false" json:"certificate_issued"`
	FinalScore        *int             `json:"final_score,omitempty"`
	Status            EnrollmentStatus `gorm:"size:20;default:'in_progress'" json:"status"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// swagger:model ModuleProgress
type ModuleProgress struct {
	UUIDBase
	EnrollmentID     string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_enrollment_module" json:"enrollment_id"`
	ModuleID         string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_enrollment_module" json:"module_id"`
	Completed        bool       `gorm:"default:false" json:"completed"`
	CompletionDate   *time.Time `json:"completion_date,omitempty"`
	TimeSpentMinutes int        `gorm:"default:0" json:"time_spent_minutes"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}

// swagger:model QuizAttempt
type QuizAttempt struct {
	UUIDBase
	EnrollmentID string         `gorm:"type:varchar(36);index;not null" json:"enrollment_id"`
	ModuleID     string         `gorm:"type:varchar(36);index;not null" json:"module_id"`
	Score        int            `gorm:"not null" json:"score"`
	Answers      datatypes.JSON `json:"answers"`
	AttemptDate  time.Time      `gorm:"not null" json:"attempt_date"`
	Passed       bool           `gorm:"default:false" json:"passed"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
