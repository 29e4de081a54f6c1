package service

import (
	"context"
	"errors"

	"procserv_training_backend/internal/config"
	"procserv_training_backend/internal/model"
	"procserv_training_backend/internal/repository"
	"procserv_training_backend/internal/util"
	"procserv_training_backend/pkg/logger"
	"procserv_training_backend/pkg/monitoring"
	"procserv_training_backend/pkg/payment"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PaymentService struct {
	PaymentRepo       *repository.PaymentRepository
	CourseRepo        *repository.CourseRepository
	EnrollmentService *EnrollmentService
	Provider          payment.Provider
	Cfg               *config.PaymentConfig
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	courseRepo *repository.CourseRepository,
	enrollmentService *EnrollmentService,
	provider payment.Provider,
	cfg *config.PaymentConfig,
) *PaymentService {
	return &PaymentService{
		PaymentRepo:       paymentRepo,
		CourseRepo:        courseRepo,
		EnrollmentService: enrollmentService,
		Provider:          provider,
		Cfg:               cfg,
	}
}

// CheckoutResult is handed to the frontend to redirect into Stripe.
type CheckoutResult struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
	Amount      int64  `json:"amount"`
	CourseTitle string `json:"course_title"`
}

// PaymentStatusResult reports the authoritative provider status plus
// whether the paying user holds an enrollment afterwards.
type PaymentStatusResult struct {
	Status         string `json:"status"`
	PaymentStatus  string `json:"payment_status"`
	AmountTotal    int64  `json:"amount_total"`
	Currency       string `json:"currency"`
	CourseEnrolled bool   `json:"course_enrolled"`
}

// CreateCheckout opens a checkout session. The amount comes exclusively
// from the server-side price table; a client-supplied amount is never
// consulted.
func (s *PaymentService) CreateCheckout(ctx context.Context, user *model.User, courseTypeID, originURL string) (*CheckoutResult, error) {
	if s.Provider == nil {
		return nil, util.ErrPaymentsDisabled
	}

	course, err := s.CourseRepo.FindByID(courseTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	amount, ok := s.Cfg.CoursePrices[course.Name]
	if !ok || amount <= 0 {
		return nil, util.ErrPriceNotConfigured
	}

	session, err := s.Provider.CreateSession(ctx, payment.CreateSessionRequest{
		Amount:      amount,
		Currency:    "usd",
		ProductName: course.Title,
		SuccessURL:  originURL + "?session_id={CHECKOUT_SESSION_ID}&payment=success",
		CancelURL:   originURL + "?payment=cancelled",
		Metadata: map[string]string{
			"user_id":      user.ID,
			"course_id":    course.ID,
			"course_title": course.Title,
		},
	})
	if err != nil {
		return nil, err
	}

	txn := &model.PaymentTransaction{
		UserID:        user.ID,
		CourseTypeID:  course.ID,
		SessionID:     session.SessionID,
		Amount:        amount,
		Currency:      "usd",
		PaymentStatus: model.PaymentPending,
	}
	if err := s.PaymentRepo.Create(txn); err != nil {
		return nil, err
	}

	return &CheckoutResult{
		CheckoutURL: session.URL,
		SessionID:   session.SessionID,
		Amount:      amount,
		CourseTitle: course.Title,
	}, nil
}

// PollStatus asks the provider for the authoritative session state,
// persists it, and promotes the enrollment when the session is paid. The
// promotion is idempotent, so polling twice cannot double-enroll.
func (s *PaymentService) PollStatus(ctx context.Context, userID, sessionID string) (*PaymentStatusResult, error) {
	if s.Provider == nil {
		return nil, util.ErrPaymentsDisabled
	}

	txn, err := s.PaymentRepo.FindBySessionAndUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPaymentNotFound
		}
		return nil, err
	}

	status, err := s.Provider.GetStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.PaymentRepo.UpdateStatus(sessionID, model.PaymentStatus(status.PaymentStatus)); err != nil {
		return nil, err
	}

	enrolled := false
	if status.PaymentStatus == string(model.PaymentPaid) {
		created, err := s.EnrollmentService.EnsureEnrolled(txn.UserID, txn.CourseTypeID)
		if err != nil {
			return nil, err
		}
		if created {
			monitoring.EnrollmentCounter.WithLabelValues("payment_poll").Inc()
		}
		enrolled = true
	}

	return &PaymentStatusResult{
		Status:         status.Status,
		PaymentStatus:  status.PaymentStatus,
		AmountTotal:    status.AmountTotal,
		Currency:       status.Currency,
		CourseEnrolled: enrolled,
	}, nil
}

// HandleWebhook verifies and applies a provider event. Signature and
// parse failures surface as ErrInvalidWebhook; a verified paid session
// runs the same idempotent enrollment promotion as the poll path.
func (s *PaymentService) HandleWebhook(body []byte, signature string) error {
	if s.Provider == nil {
		return util.ErrPaymentsDisabled
	}

	event, err := s.Provider.VerifyWebhook(body, signature)
	if err != nil {
		logger.Log.Warn("webhook rejected", zap.Error(err))
		return util.ErrInvalidWebhook
	}
	if event.SessionID == "" {
		return nil
	}

	txn, err := s.PaymentRepo.FindBySession(event.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Session opened elsewhere (or a replay after cleanup); ack
			// without acting.
			logger.Log.Warn("webhook for unknown session", zap.String("session_id", event.SessionID))
			return nil
		}
		return err
	}

	if err := s.PaymentRepo.UpdateStatus(event.SessionID, model.PaymentStatus(event.PaymentStatus)); err != nil {
		return err
	}

	if event.PaymentStatus == string(model.PaymentPaid) {
		created, err := s.EnrollmentService.EnsureEnrolled(txn.UserID, txn.CourseTypeID)
		if err != nil {
			return err
		}
		if created {
			monitoring.EnrollmentCounter.WithLabelValues("payment_webhook").Inc()
		}
	}

	return nil
}
