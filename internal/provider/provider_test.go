package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExchangeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Session-ID") != "sid-123" {
			t.Errorf("missing session id header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"sso@example.com","name":"SSO User","picture":"https://img.example/p.png"}`))
	}))
	defer srv.Close()

	id, err := NewHTTPExchanger(srv.URL, time.Second).Exchange(context.Background(), "sid-123")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if id.Email != "sso@example.com" || id.Name != "SSO User" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestExchangeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewHTTPExchanger(srv.URL, time.Second).Exchange(context.Background(), "bad")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestExchangeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewHTTPExchanger(srv.URL, 20*time.Millisecond).Exchange(context.Background(), "slow")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestExchangeMissingEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"No Email"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPExchanger(srv.URL, time.Second).Exchange(context.Background(), "x")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
