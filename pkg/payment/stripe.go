package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.stripe.com"

// webhook signatures older than this are rejected
const signatureTolerance = 5 * time.Minute

// CreateSessionRequest describes a checkout session to open. Amount is in
// the smallest currency unit and is always server-derived.
type CreateSessionRequest struct {
	Amount      int64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type CheckoutSession struct {
	SessionID string
	URL       string
}

type SessionStatus struct {
	Status        string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
}

type WebhookEvent struct {
	SessionID     string
	PaymentStatus string
}

// Provider is the external payment collaborator consumed by the payment
// service. The Stripe client implements it; tests swap in a fake.
type Provider interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error)
	GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error)
	VerifyWebhook(body []byte, signature string) (*WebhookEvent, error)
}

// StripeClient talks to the Stripe Checkout REST API.
type StripeClient struct {
	client        *resty.Client
	webhookSecret string
	now           func() time.Time
}

func NewStripeClient(apiKey, webhookSecret string) *StripeClient {
	client := resty.New().
		SetBaseURL(defaultBaseURL).
		SetAuthToken(apiKey).
		SetTimeout(15 * time.Second)

	return &StripeClient{
		client:        client,
		webhookSecret: webhookSecret,
		now:           time.Now,
	}
}

type stripeSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (s *StripeClient) CreateSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error) {
	form := map[string]string{
		"mode":        "payment",
		"success_url": req.SuccessURL,
		"cancel_url":  req.CancelURL,
		"line_items[0][quantity]":                       "1",
		"line_items[0][price_data][currency]":           req.Currency,
		"line_items[0][price_data][unit_amount]":        strconv.FormatInt(req.Amount, 10),
		"line_items[0][price_data][product_data][name]": req.ProductName,
	}
	for k, v := range req.Metadata {
		form["metadata["+k+"]"] = v
	}

	var session stripeSession
	var apiErr stripeError
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&session).
		SetError(&apiErr).
		Post("/v1/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("stripe create session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("stripe create session: %s", apiErr.Error.Message)
	}

	return &CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

func (s *StripeClient) GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	var session stripeSession
	var apiErr stripeError
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&session).
		SetError(&apiErr).
		Get("/v1/checkout/sessions/" + sessionID)
	if err != nil {
		return nil, fmt.Errorf("stripe get session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("stripe get session: %s", apiErr.Error.Message)
	}

	return &SessionStatus{
		Status:        session.Status,
		PaymentStatus: session.PaymentStatus,
		AmountTotal:   session.AmountTotal,
		Currency:      session.Currency,
	}, nil
}

// VerifyWebhook checks the Stripe-Signature header (HMAC-SHA256 of
// "<timestamp>.<body>") and extracts the checkout session event.
func (s *StripeClient) VerifyWebhook(body []byte, signature string) (*WebhookEvent, error) {
	timestamp, signatures, err := parseSignatureHeader(signature)
	if err != nil {
		return nil, err
	}

	age := s.now().Sub(time.Unix(timestamp, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return nil, fmt.Errorf("webhook timestamp outside tolerance")
	}

	expected := computeSignature(s.webhookSecret, timestamp, body)
	valid := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("webhook signature mismatch")
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			Object stripeSession `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("parse webhook event: %w", err)
	}
	if !strings.HasPrefix(event.Type, "checkout.session.") {
		// Verified but irrelevant; nothing to reconcile.
		return &WebhookEvent{}, nil
	}

	paymentStatus := event.Data.Object.PaymentStatus
	if event.Type == "checkout.session.async_payment_failed" {
		paymentStatus = "failed"
	}

	return &WebhookEvent{
		SessionID:     event.Data.Object.ID,
		PaymentStatus: paymentStatus,
	}, nil
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, fmt.Errorf("missing signature header")
	}

	var timestamp int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("malformed signature timestamp")
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("malformed signature header")
	}
	return timestamp, signatures, nil
}

func computeSignature(secret string, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
