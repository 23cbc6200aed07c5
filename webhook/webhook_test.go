package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDeliver_SignsPayload(t *testing.T) {
	secret := "topsecret"
	var gotSig string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Reelist-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	event := &Event{Type: EventVideosCompleted, Username: "creator", Timestamp: 1700000000}
	if err := Deliver(context.Background(), srv.URL, secret, event); err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}

	if !strings.HasPrefix(gotSig, "sha256=") {
		t.Fatalf("signature header = %q", gotSig)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Errorf("signature = %s, want %s", gotSig, want)
	}
}

func TestDeliver_NoSecretNoSignature(t *testing.T) {
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Reelist-Signature")
	}))
	defer srv.Close()

	event := &Event{Type: EventVideosFailed, Username: "creator"}
	if err := Deliver(context.Background(), srv.URL, "", event); err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}
	if gotSig != "" {
		t.Errorf("unsigned delivery carried a signature: %q", gotSig)
	}
}

func TestDeliver_EndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	event := &Event{Type: EventVideosCompleted, Username: "creator"}
	if err := Deliver(context.Background(), srv.URL, "", event); err == nil {
		t.Error("5xx endpoint response should surface as an error")
	}
}
