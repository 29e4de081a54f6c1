package repository

import (
	"procserv_training_backend/internal/model"

	"gorm.io/gorm"
)

// ListLimit caps every collection scan at 1000 rows.
const ListLimit = 1000

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.CourseType) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindAll() ([]model.CourseType, error) {
	var courses []model.CourseType
	err := r.DB.Limit(ListLimit).Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindByID(id string) (*model.CourseType, error) {
	var course model.CourseType
	err := r.DB.Where("id = ?", id).First(&course).Error
	return &course, err
}

func (r *CourseRepository) CreateModule(module *model.CourseModule) error {
	return r.DB.Create(module).Error
}

func (r *CourseRepository) FindModules(courseTypeID string) ([]model.CourseModule, error) {
	var modules []model.CourseModule
	err := r.DB.
		Where("course_type_id = ?", courseTypeID).
		Order("module_order ASC").
		Limit(ListLimit).
		Find(&modules).Error
	return modules, err
}

func (r *CourseRepository) FindModuleByID(id string) (*model.CourseModule, error) {
	var module model.CourseModule
	err := r.DB.Where("id = ?", id).First(&module).Error
	return &module, err
}

func (r *CourseRepository) UpdateModule(module *model.CourseModule) error {
	return r.DB.Save(module).Error
}

func (r *CourseRepository) CountModules(courseTypeID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CourseModule{}).
		Where("course_type_id = ?", courseTypeID).
		Count(&count).Error
	return count, err
}

func (r *CourseRepository) CreateQuestion(question *model.QuizQuestion) error {
	return r.DB.Create(question).Error
}

func (r *CourseRepository) FindQuestions(moduleID string) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.DB.
		Where("module_id = ?", moduleID).
		Order("created_at ASC").
		Limit(ListLimit).
		Find(&questions).Error
	return questions, err
}

func (r *CourseRepository) CountQuestionsByModule(moduleIDs []string) (map[string]int64, error) {
	type row struct {
		ModuleID string
		N        int64
	}
	var rows []row
	err := r.DB.Model(&model.QuizQuestion{}).
		Select("module_id, count(*) as n").
		Where("module_id IN ?", moduleIDs).
		Group("module_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.ModuleID] = r.N
	}
	return counts, nil
}
