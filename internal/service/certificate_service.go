package service

import (
	"errors"
	"strings"
	"time"

	"procserv_training_backend/internal/model"
	"procserv_training_backend/internal/repository"
	"procserv_training_backend/internal/util"

	"gorm.io/gorm"
)

// certificateProgram prefixes every certificate id; JBCC is the Texas
// Judicial Branch Certification Commission.
const certificateProgram = "JBCC"

type CertificateService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
}

func NewCertificateService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
) *CertificateService {
	return &CertificateService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
	}
}

// Certificate is derived on every read; nothing is stored.
// swagger:model Certificate
type Certificate struct {
	CertificateID  string     `json:"certificate_id"`
	StudentName    string     `json:"student_name"`
	CourseTitle    string     `json:"course_title"`
	CourseType     string     `json:"course_type"`
	CompletionDate *time.Time `json:"completion_date"`
	TotalHours     int        `json:"total_hours"`
	EthicsHours    int        `json:"ethics_hours"`
	FinalScore     int        `json:"final_score"`
	IssueDate      time.Time  `json:"issue_date"`
}

// Issue derives the certificate for a certificate-eligible enrollment
// owned by the requesting user.
func (s *CertificateService) Issue(enrollmentID, userID string, user *model.User) (*Certificate, error) {
	enrollment, err := s.EnrollmentRepo.FindCertifiable(enrollmentID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertificateNotFound
		}
		return nil, err
	}

	course, err := s.CourseRepo.FindByID(enrollment.CourseTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	finalScore := 100
	if enrollment.FinalScore != nil {
		finalScore = *enrollment.FinalScore
	}

	return &Certificate{
		CertificateID:  CertificateID(enrollment.ID),
		StudentName:    user.FullName(),
		CourseTitle:    course.Title,
		CourseType:     course.Name,
		CompletionDate: enrollment.CompletionDate,
		TotalHours:     course.DurationHours,
		EthicsHours:    course.EthicsHoursRequired,
		FinalScore:     finalScore,
		IssueDate:      time.Now().UTC(),
	}, nil
}

// CertificateID is <program>-<first 8 chars of the enrollment id,
// uppercased>.
func CertificateID(enrollmentID string) string {
	short := enrollmentID
	if len(short) > 8 {
		short = short[:8]
	}
	return certificateProgram + "-" + strings.ToUpper(short)
}
