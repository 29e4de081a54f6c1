package repository

import (
	"procserv_training_backend/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	DB *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) Create(txn *model.PaymentTransaction) error {
	return r.DB.Create(txn).Error
}

func (r *PaymentRepository) FindBySession(sessionID string) (*model.PaymentTransaction, error) {
	var txn model.PaymentTransaction
	err := r.DB.Where("session_id = ?", sessionID).First(&txn).Error
	return &txn, err
}

func (r *PaymentRepository) FindBySessionAndUser(sessionID, userID string) (*model.PaymentTransaction, error) {
	var txn model.PaymentTransaction
	err := r.DB.
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&txn).Error
	return &txn, err
}

func (r *PaymentRepository) UpdateStatus(sessionID string, status model.PaymentStatus) error {
	return r.DB.Model(&model.PaymentTransaction{}).
		Where("session_id = ?", sessionID).
		Update("payment_status", status).Error
}
