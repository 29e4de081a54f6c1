package model

import "gorm.io/datatypes"

// CourseType is one of the JBCC-approved certification course offerings.
// swagger:model CourseType
type CourseType struct {
	UUIDBase
	Name                string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Title               string `gorm:"size:255;not null" json:"title"`
	Description         string `gorm:"type:text" json:"description"`
	DurationHours       int    `gorm:"not null" json:"duration_hours"`
	PassingScore        int    `gorm:"default:70" json:"passing_score"`
	EthicsHoursRequired int    `gorm:"default:0" json:"ethics_hours_required"`
}

func (CourseType) TableName() string {
	return "course_types"
}

// swagger:model CourseModule
type CourseModule struct {
	UUIDBase
	CourseTypeID    string `gorm:"type:varchar(36);index;not null" json:"course_type_id"`
	Title           string `gorm:"size:255;not null" json:"title"`
	Description     string `gorm:"type:text" json:"description"`
	Content         string `gorm:"type:longtext" json:"content"`
	VideoURL        string `gorm:"size:500" json:"video_url,omitempty"`
	DurationMinutes int    `gorm:"not null" json:"duration_minutes"`
	Order           int    `gorm:"column:module_order;not null" json:"order"`
	IsEthics        bool   `gorm:"default:false" json:"is_ethics"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

// QuizQuestion holds the correct answer and explanation; neither may be
// exposed on student-facing responses.
// swagger:model QuizQuestion
type QuizQuestion struct {
	UUIDBase
	ModuleID      string         `gorm:"type:varchar(36);index;not null" json:"module_id"`
	Question      string         `gorm:"type:text;not null" json:"question"`
	Options       datatypes.JSON `gorm:"not null" json:"options"`
	CorrectAnswer int            `gorm:"not null" json:"correct_answer"`
	Explanation   string         `gorm:"type:text" json:"explanation"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
