package addressval

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"shipping-label-service/internal/model"
)

type stubProvider struct {
	name   string
	result Result
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Validate(ctx context.Context, addr Address) (Result, error) {
	s.calls++
	if s.err != nil {
		return Result{}, s.err
	}
	return s.result, nil
}

func testAddress() Address {
	return Address{Address: "1 Main St", City: "Austin", State: "TX", Zip: "73301"}
}

func TestValidate_PrimaryWins(t *testing.T) {
	primary := &stubProvider{name: "usps", result: Result{Status: model.AddressValid, Source: "usps"}}
	fallback := &stubProvider{name: "google"}

	v := NewChain(time.Second, zap.NewNop(), primary, fallback)
	result := v.Validate(context.Background(), testAddress())

	if result.Source != "usps" || result.Status != model.AddressValid {
		t.Errorf("unexpected result: %+v", result)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback must not run when primary answers")
	}
}

func TestValidate_FallbackOnPrimaryFailure(t *testing.T) {
	primary := &stubProvider{name: "usps", err: errors.New("rate limited")}
	fallback := &stubProvider{name: "google", result: Result{Status: model.AddressValid, Source: "google"}}

	v := NewChain(time.Second, zap.NewNop(), primary, fallback)
	result := v.Validate(context.Background(), testAddress())

	if result.Source != "google" {
		t.Errorf("expected google fallback, got %+v", result)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("unexpected call counts: primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestValidate_InvalidVerdictDoesNotFallBack(t *testing.T) {
	// A provider that answers "invalid" has answered; the chain stops.
	primary := &stubProvider{name: "usps", result: Result{Status: model.AddressInvalid, Source: "usps"}}
	fallback := &stubProvider{name: "google", result: Result{Status: model.AddressValid, Source: "google"}}

	v := NewChain(time.Second, zap.NewNop(), primary, fallback)
	result := v.Validate(context.Background(), testAddress())

	if result.Status != model.AddressInvalid || result.Source != "usps" {
		t.Errorf("unexpected result: %+v", result)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback must not run on an invalid verdict")
	}
}

func TestValidate_AllFailDegradesToPending(t *testing.T) {
	primary := &stubProvider{name: "usps", err: errors.New("down")}
	fallback := &stubProvider{name: "google", err: errors.New("also down")}

	v := NewChain(time.Second, zap.NewNop(), primary, fallback)
	result := v.Validate(context.Background(), testAddress())

	if result.Status != model.AddressPending {
		t.Errorf("expected pending, got %+v", result)
	}
	if result.Source != "none" {
		t.Errorf("expected source none, got %q", result.Source)
	}
}

func TestValidate_NoProvidersConfigured(t *testing.T) {
	v := NewChain(time.Second, zap.NewNop())
	result := v.Validate(context.Background(), testAddress())
	if result.Status != model.AddressPending {
		t.Errorf("expected pending, got %+v", result)
	}
}

func TestUSPSProvider_ValidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("API") != "Verify" {
			http.Error(w, "bad api", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`<AddressValidateResponse><Address><Address2>1 MAIN ST</Address2><City>AUSTIN</City><State>TX</State><Zip5>73301</Zip5></Address></AddressValidateResponse>`))
	}))
	defer server.Close()

	p := NewUSPSProvider("TESTUSER", time.Second)
	p.baseURL = server.URL

	result, err := p.Validate(context.Background(), testAddress())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if result.Status != model.AddressValid || result.Source != "usps" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestUSPSProvider_AddressError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<AddressValidateResponse><Address><Error><Description>Address Not Found.</Description></Error></Address></AddressValidateResponse>`))
	}))
	defer server.Close()

	p := NewUSPSProvider("TESTUSER", time.Second)
	p.baseURL = server.URL

	result, err := p.Validate(context.Background(), testAddress())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if result.Status != model.AddressInvalid {
		t.Errorf("expected invalid, got %+v", result)
	}
	if result.Message != "Address Not Found." {
		t.Errorf("expected correction message, got %q", result.Message)
	}
}

func TestUSPSProvider_ServerErrorIsProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewUSPSProvider("TESTUSER", time.Second)
	p.baseURL = server.URL

	if _, err := p.Validate(context.Background(), testAddress()); err == nil {
		t.Fatal("expected provider failure")
	}
}

func TestGoogleProvider_CompleteAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			http.Error(w, "missing key", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"result":{"verdict":{"addressComplete":true},"address":{"formattedAddress":"1 Main St, Austin, TX 73301"}}}`))
	}))
	defer server.Close()

	p := NewGoogleProvider("test-key", time.Second)
	p.baseURL = server.URL

	result, err := p.Validate(context.Background(), testAddress())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if result.Status != model.AddressValid || result.Source != "google" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestGoogleProvider_IncompleteAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"verdict":{"addressComplete":false}}}`))
	}))
	defer server.Close()

	p := NewGoogleProvider("test-key", time.Second)
	p.baseURL = server.URL

	result, err := p.Validate(context.Background(), testAddress())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if result.Status != model.AddressInvalid {
		t.Errorf("expected invalid, got %+v", result)
	}
}

func TestValidate_TimeoutTriggersFallback(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	primary := NewUSPSProvider("TESTUSER", 20*time.Millisecond)
	primary.baseURL = slow.URL
	fallback := &stubProvider{name: "google", result: Result{Status: model.AddressValid, Source: "google"}}

	v := NewChain(20*time.Millisecond, zap.NewNop(), primary, fallback)
	result := v.Validate(context.Background(), testAddress())

	if result.Source != "google" {
		t.Errorf("expected fallback after timeout, got %+v", result)
	}
}
