package repository

import (
	"procserv_training_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

// Create inserts without a prior existence check; the unique index on
// (user_id, course_type_id) rejects a second active enrollment and the
// duplicate-key error is translated by gorm.
func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) FindByID(id string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("id = ?", id).First(&enrollment).Error
	return &enrollment, err
}

func (r *EnrollmentRepository) FindByIDAndUser(id, userID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&enrollment).Error
	return &enrollment, err
}

func (r *EnrollmentRepository) FindByUser(userID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.
		Where("user_id = ?", userID).
		Order("enrollment_date ASC").
		Limit(ListLimit).
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) FindByUserAndCourse(userID, courseTypeID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.
		Where("user_id = ? AND course_type_id = ?", userID, courseTypeID).
		First(&enrollment).Error
	return &enrollment, err
}

// FindCertifiable returns the enrollment only when it is
// certificate-eligible: owned by the user, completed, certificate issued.
func (r *EnrollmentRepository) FindCertifiable(id, userID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.
		Where("id = ? AND user_id = ? AND status = ? AND certificate_issued = ?",
			id, userID, model.EnrollmentCompleted, true).
		First(&enrollment).Error
	return &enrollment, err
}

func (r *EnrollmentRepository) Update(enrollment *model.Enrollment) error {
	return r.DB.Save(enrollment).Error
}
