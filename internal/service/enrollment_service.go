package service

import (
	"errors"
	"time"

	"procserv_training_backend/internal/model"
	"procserv_training_backend/internal/repository"
	"procserv_training_backend/internal/util"

	"gorm.io/gorm"
)

type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	ProgressRepo   *repository.ProgressRepository
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		ProgressRepo:   progressRepo,
	}
}

// ProgressSummary is the per-enrollment completion rollup.
type ProgressSummary struct {
	CompletedModules int64   `json:"completed_modules"`
	TotalModules     int64   `json:"total_modules"`
	Percentage       float64 `json:"percentage"`
}

// EnrolledCourse joins an enrollment with its course and progress.
type EnrolledCourse struct {
	Enrollment model.Enrollment `json:"enrollment"`
	Course     model.CourseType `json:"course"`
	Progress   ProgressSummary  `json:"progress"`
}

// Enroll creates an in_progress enrollment with a single atomic insert.
// A concurrent or repeated enroll for the same (user, course) loses on the
// unique index rather than on a racy existence check.
func (s *EnrollmentService) Enroll(userID, courseTypeID string) (*model.Enrollment, error) {
	if _, err := s.CourseRepo.FindByID(courseTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	enrollment := &model.Enrollment{
		UserID:         userID,
		CourseTypeID:   courseTypeID,
		EnrollmentDate: time.Now().UTC(),
		Status:         model.EnrollmentInProgress,
	}
	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadyEnrolled
		}
		return nil, err
	}
	return enrollment, nil
}

// EnsureEnrolled is the idempotent variant used by payment reconciliation:
// it reports whether an enrollment exists after the call, creating one if
// needed, and treats a lost insert race as success.
func (s *EnrollmentService) EnsureEnrolled(userID, courseTypeID string) (created bool, err error) {
	_, err = s.Enroll(userID, courseTypeID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, util.ErrAlreadyEnrolled) {
		return false, nil
	}
	return false, err
}

// ListForUser reflects store contents at call time. Percentage is 0 for a
// course with no modules.
func (s *EnrollmentService) ListForUser(userID string) ([]EnrolledCourse, error) {
	enrollments, err := s.EnrollmentRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	result := make([]EnrolledCourse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		course, err := s.CourseRepo.FindByID(enrollment.CourseTypeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Orphaned enrollment; skip rather than fail the listing.
				continue
			}
			return nil, err
		}

		completed, err := s.ProgressRepo.CountCompleted(enrollment.ID)
		if err != nil {
			return nil, err
		}
		total, err := s.CourseRepo.CountModules(enrollment.CourseTypeID)
		if err != nil {
			return nil, err
		}

		percentage := 0.0
		if total > 0 {
			percentage = float64(completed) / float64(total) * 100
		}

		result = append(result, EnrolledCourse{
			Enrollment: enrollment,
			Course:     *course,
			Progress: ProgressSummary{
				CompletedModules: completed,
				TotalModules:     total,
				Percentage:       percentage,
			},
		})
	}
	return result, nil
}
