package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*StripeClient, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewStripeClient("sk_test_key", "whsec_test")
	client.client.SetBaseURL(server.URL)
	return client, server
}

func signBody(secret string, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateSession(t *testing.T) {
	var gotAuth, gotAmount, gotMode string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotAmount = r.PostFormValue("line_items[0][price_data][unit_amount]")
		gotMode = r.PostFormValue("mode")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_test_123","url":"https://checkout.stripe.com/c/cs_test_123"}`)
	})

	session, err := client.CreateSession(context.Background(), CreateSessionRequest{
		Amount:      15000,
		Currency:    "usd",
		ProductName: "Initial Certification",
		SuccessURL:  "https://app.example?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   "https://app.example?payment=cancelled",
		Metadata:    map[string]string{"user_id": "u1"},
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.SessionID != "cs_test_123" {
		t.Fatalf("session id %q", session.SessionID)
	}
	if gotAuth != "Bearer sk_test_key" {
		t.Fatalf("authorization header %q", gotAuth)
	}
	if gotAmount != "15000" || gotMode != "payment" {
		t.Fatalf("form mismatch: amount=%q mode=%q", gotAmount, gotMode)
	}
}

func TestCreateSessionAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"Invalid currency","type":"invalid_request_error"}}`)
	})

	_, err := client.CreateSession(context.Background(), CreateSessionRequest{Amount: 1, Currency: "xx"})
	if err == nil {
		t.Fatal("expected an error from a 400 response")
	}
}

func TestGetStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions/cs_test_123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_test_123","status":"complete","payment_status":"paid","amount_total":15000,"currency":"usd"}`)
	})

	status, err := client.GetStatus(context.Background(), "cs_test_123")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status.PaymentStatus != "paid" || status.AmountTotal != 15000 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestVerifyWebhook(t *testing.T) {
	client := NewStripeClient("sk_test_key", "whsec_test")
	now := time.Now()
	client.now = func() time.Time { return now }

	body := []byte(`{"type":"checkout.session.completed","data":{"object":{"id":"cs_test_123","payment_status":"paid"}}}`)
	ts := now.Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, signBody("whsec_test", ts, body))

	event, err := client.VerifyWebhook(body, header)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if event.SessionID != "cs_test_123" || event.PaymentStatus != "paid" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestVerifyWebhookBadSignature(t *testing.T) {
	client := NewStripeClient("sk_test_key", "whsec_test")

	body := []byte(`{}`)
	header := fmt.Sprintf("t=%d,v1=%s", time.Now().Unix(), "deadbeef")
	if _, err := client.VerifyWebhook(body, header); err == nil {
		t.Fatal("bad signature must be rejected")
	}
}

func TestVerifyWebhookStaleTimestamp(t *testing.T) {
	client := NewStripeClient("sk_test_key", "whsec_test")

	body := []byte(`{}`)
	ts := time.Now().Add(-10 * time.Minute).Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, signBody("whsec_test", ts, body))
	if _, err := client.VerifyWebhook(body, header); err == nil {
		t.Fatal("stale timestamp must be rejected")
	}
}

func TestVerifyWebhookMissingHeader(t *testing.T) {
	client := NewStripeClient("sk_test_key", "whsec_test")
	if _, err := client.VerifyWebhook([]byte(`{}`), ""); err == nil {
		t.Fatal("missing header must be rejected")
	}
}

func TestVerifyWebhookNonSessionEvent(t *testing.T) {
	client := NewStripeClient("sk_test_key", "whsec_test")
	now := time.Now()
	client.now = func() time.Time { return now }

	body := []byte(`{"type":"invoice.created","data":{"object":{"id":"in_123"}}}`)
	ts := now.Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, signBody("whsec_test", ts, body))

	event, err := client.VerifyWebhook(body, header)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if event.SessionID != "" {
		t.Fatalf("non-session event must yield an empty event, got %+v", event)
	}
}

func TestVerifyWebhookAsyncFailure(t *testing.T) {
	client := NewStripeClient("sk_test_key", "whsec_test")
	now := time.Now()
	client.now = func() time.Time { return now }

	body := []byte(`{"type":"checkout.session.async_payment_failed","data":{"object":{"id":"cs_test_9","payment_status":"unpaid"}}}`)
	ts := now.Unix()
	header := fmt.Sprintf("t=%d,v1=%s", ts, signBody("whsec_test", ts, body))

	event, err := client.VerifyWebhook(body, header)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if event.PaymentStatus != "failed" {
		t.Fatalf("async failure must map to failed, got %q", event.PaymentStatus)
	}
}
