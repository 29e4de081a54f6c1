package repository

import (
	"procserv_training_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// UpsertModuleProgress records completion idempotently: a repeat call for
// the same (enrollment, module) updates the row and accumulates time.
func (r *ProgressRepository) UpsertModuleProgress(progress *model.ModuleProgress) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "enrollment_id"}, {Name: "module_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"completed":          progress.Completed,
			"completion_date":    progress.CompletionDate,
			"time_spent_minutes": gorm.Expr("module_progress.time_spent_minutes + ?", progress.TimeSpentMinutes),
		}),
	}).Create(progress).Error
}

func (r *ProgressRepository) CountCompleted(enrollmentID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ModuleProgress{}).
		Where("enrollment_id = ? AND completed = ?", enrollmentID, true).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) FindByEnrollment(enrollmentID string) ([]model.ModuleProgress, error) {
	var rows []model.ModuleProgress
	err := r.DB.
		Where("enrollment_id = ?", enrollmentID).
		Limit(ListLimit).
		Find(&rows).Error
	return rows, err
}

func (r *ProgressRepository) CreateAttempt(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *ProgressRepository) FindAttempts(enrollmentID string) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.
		Where("enrollment_id = ?", enrollmentID).
		Order("attempt_date ASC").
		Limit(ListLimit).
		Find(&attempts).Error
	return attempts, err
}

// BestPassingScores returns, per module, the highest passing score the
// enrollment has achieved.
func (r *ProgressRepository) BestPassingScores(enrollmentID string) (map[string]int, error) {
	type row struct {
		ModuleID string
		Best     int
	}
	var rows []row
	err := r.DB.Model(&model.QuizAttempt{}).
		Select("module_id, max(score) as best").
		Where("enrollment_id = ? AND passed = ?", enrollmentID, true).
		Group("module_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	best := make(map[string]int, len(rows))
	for _, r := range rows {
		best[r.ModuleID] = r.Best
	}
	return best, nil
}
