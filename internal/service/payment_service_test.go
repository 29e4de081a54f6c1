package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"procserv_training_backend/internal/model"
	"procserv_training_backend/internal/repository"
	"procserv_training_backend/internal/util"
	"procserv_training_backend/pkg/payment"
)

// fakeProvider records calls and serves canned session state.
type fakeProvider struct {
	createdSessions []payment.CreateSessionRequest
	status          map[string]string
	webhookEvent    *payment.WebhookEvent
	webhookErr      error
}

func (f *fakeProvider) CreateSession(ctx context.Context, req payment.CreateSessionRequest) (*payment.CheckoutSession, error) {
	f.createdSessions = append(f.createdSessions, req)
	id := fmt.Sprintf("cs_test_%d", len(f.createdSessions))
	return &payment.CheckoutSession{SessionID: id, URL: "https://checkout.example/" + id}, nil
}

func (f *fakeProvider) GetStatus(ctx context.Context, sessionID string) (*payment.SessionStatus, error) {
	status, ok := f.status[sessionID]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", sessionID)
	}
	return &payment.SessionStatus{
		Status:        "complete",
		PaymentStatus: status,
		AmountTotal:   15000,
		Currency:      "usd",
	}, nil
}

func (f *fakeProvider) VerifyWebhook(body []byte, signature string) (*payment.WebhookEvent, error) {
	if f.webhookErr != nil {
		return nil, f.webhookErr
	}
	return f.webhookEvent, nil
}

func newPaymentEnv(t *testing.T) (*testEnv, *PaymentService, *fakeProvider) {
	t.Helper()

	env := newTestEnv(t)
	provider := &fakeProvider{status: map[string]string{}}
	cfg := testConfig()
	svc := NewPaymentService(
		repository.NewPaymentRepository(env.db),
		repository.NewCourseRepository(env.db),
		env.enrollment,
		provider,
		&cfg.Payment,
	)
	return env, svc, provider
}

func TestCreateCheckoutUsesServerPrice(t *testing.T) {
	env, svc, provider := newPaymentEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "initial", 70)

	result, err := svc.CreateCheckout(context.Background(), user, course.ID, "https://app.example")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.Amount != 15000 {
		t.Fatalf("amount %d, want the configured 15000", result.Amount)
	}
	if len(provider.createdSessions) != 1 || provider.createdSessions[0].Amount != 15000 {
		t.Fatalf("provider received wrong session: %+v", provider.createdSessions)
	}

	var txn model.PaymentTransaction
	if err := env.db.First(&txn, "session_id = ?", result.SessionID).Error; err != nil {
		t.Fatalf("load txn: %v", err)
	}
	if txn.PaymentStatus != model.PaymentPending || txn.UserID != user.ID {
		t.Fatalf("unexpected transaction: %+v", txn)
	}
}

func TestCreateCheckoutUnknownCourse(t *testing.T) {
	env, svc, _ := newPaymentEnv(t)
	user := seedUser(t, env.db, "s@example.com")

	_, err := svc.CreateCheckout(context.Background(), user, "missing", "https://app.example")
	if !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestCreateCheckoutNoPriceConfigured(t *testing.T) {
	env, svc, _ := newPaymentEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "unpriced", 70)

	_, err := svc.CreateCheckout(context.Background(), user, course.ID, "https://app.example")
	if !errors.Is(err, util.ErrPriceNotConfigured) {
		t.Fatalf("expected ErrPriceNotConfigured, got %v", err)
	}
}

func TestPollStatusPaidEnrolls(t *testing.T) {
	env, svc, provider := newPaymentEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "initial", 70)

	checkout, err := svc.CreateCheckout(context.Background(), user, course.ID, "https://app.example")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	provider.status[checkout.SessionID] = string(model.PaymentPaid)

	result, err := svc.PollStatus(context.Background(), user.ID, checkout.SessionID)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if !result.CourseEnrolled {
		t.Fatalf("paid session must report enrollment: %+v", result)
	}

	// Polling again must not create a second enrollment.
	if _, err := svc.PollStatus(context.Background(), user.ID, checkout.SessionID); err != nil {
		t.Fatalf("second poll: %v", err)
	}
	var count int64
	if err := env.db.Model(&model.Enrollment{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one enrollment, got %d", count)
	}

	var txn model.PaymentTransaction
	if err := env.db.First(&txn, "session_id = ?", checkout.SessionID).Error; err != nil {
		t.Fatalf("load txn: %v", err)
	}
	if txn.PaymentStatus != model.PaymentPaid {
		t.Fatalf("transaction status %q, want paid", txn.PaymentStatus)
	}
}

func TestPollStatusUnpaidDoesNotEnroll(t *testing.T) {
	env, svc, provider := newPaymentEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "initial", 70)

	checkout, err := svc.CreateCheckout(context.Background(), user, course.ID, "https://app.example")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	provider.status[checkout.SessionID] = "unpaid"

	result, err := svc.PollStatus(context.Background(), user.ID, checkout.SessionID)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if result.CourseEnrolled {
		t.Fatalf("unpaid session must not enroll: %+v", result)
	}

	var count int64
	if err := env.db.Model(&model.Enrollment{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no enrollments, got %d", count)
	}
}

func TestPollStatusForeignSession(t *testing.T) {
	env, svc, _ := newPaymentEnv(t)
	buyer := seedUser(t, env.db, "buyer@example.com")
	other := seedUser(t, env.db, "other@example.com")
	course := seedCourse(t, env.db, "initial", 70)

	checkout, err := svc.CreateCheckout(context.Background(), buyer, course.ID, "https://app.example")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	_, err = svc.PollStatus(context.Background(), other.ID, checkout.SessionID)
	if !errors.Is(err, util.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestWebhookPaidEnrolls(t *testing.T) {
	env, svc, provider := newPaymentEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "initial", 70)

	checkout, err := svc.CreateCheckout(context.Background(), user, course.ID, "https://app.example")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	provider.webhookEvent = &payment.WebhookEvent{
		SessionID:     checkout.SessionID,
		PaymentStatus: string(model.PaymentPaid),
	}

	if err := svc.HandleWebhook([]byte("{}"), "sig"); err != nil {
		t.Fatalf("webhook: %v", err)
	}

	var count int64
	if err := env.db.Model(&model.Enrollment{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one enrollment, got %d", count)
	}
}

func TestWebhookInvalidSignature(t *testing.T) {
	_, svc, provider := newPaymentEnv(t)
	provider.webhookErr = errors.New("signature mismatch")

	err := svc.HandleWebhook([]byte("{}"), "bad")
	if !errors.Is(err, util.ErrInvalidWebhook) {
		t.Fatalf("expected ErrInvalidWebhook, got %v", err)
	}
}

func TestWebhookUnknownSessionIsAcked(t *testing.T) {
	_, svc, provider := newPaymentEnv(t)
	provider.webhookEvent = &payment.WebhookEvent{
		SessionID:     "cs_unknown",
		PaymentStatus: string(model.PaymentPaid),
	}

	if err := svc.HandleWebhook([]byte("{}"), "sig"); err != nil {
		t.Fatalf("unknown session must be acknowledged, got %v", err)
	}
}

func TestPaymentsDisabled(t *testing.T) {
	env := newTestEnv(t)
	cfg := testConfig()
	svc := NewPaymentService(
		repository.NewPaymentRepository(env.db),
		repository.NewCourseRepository(env.db),
		env.enrollment,
		nil,
		&cfg.Payment,
	)
	user := seedUser(t, env.db, "s@example.com")

	if _, err := svc.CreateCheckout(context.Background(), user, "any", "https://app.example"); !errors.Is(err, util.ErrPaymentsDisabled) {
		t.Fatalf("checkout: expected ErrPaymentsDisabled, got %v", err)
	}
	if _, err := svc.PollStatus(context.Background(), user.ID, "any"); !errors.Is(err, util.ErrPaymentsDisabled) {
		t.Fatalf("poll: expected ErrPaymentsDisabled, got %v", err)
	}
	if err := svc.HandleWebhook(nil, ""); !errors.Is(err, util.ErrPaymentsDisabled) {
		t.Fatalf("webhook: expected ErrPaymentsDisabled, got %v", err)
	}
}
