package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopfloor/internal/models"
)

func TestLoginStoresTokenAndUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/user/login" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "worker@shop.lk" {
			t.Fatalf("email = %q", body["email"])
		}
		w.Header().Set("Authorization", "Bearer tok-123")
		_ = json.NewEncoder(w).Encode(models.User{ID: "u1", Email: "worker@shop.lk", FirstName: "Nimal"})
	}))
	defer srv.Close()

	store := NewStore(srv.URL, time.Second, nil)
	sess, err := store.Login(context.Background(), "worker@shop.lk", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token != "tok-123" {
		t.Fatalf("token = %q, want tok-123", sess.Token)
	}
	if !store.Authenticated() || store.Token() != "tok-123" {
		t.Fatal("store did not retain session")
	}
	if store.User() == nil || store.User().FirstName != "Nimal" {
		t.Fatalf("user not retained: %+v", store.User())
	}
}

func TestLoginServerRejectedSurfacesMsg(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"Invalid email or password"}`))
	}))
	defer srv.Close()

	store := NewStore(srv.URL, time.Second, nil)
	_, err := store.Login(context.Background(), "worker@shop.lk", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthError", err)
	}
	if authErr.Msg != "Invalid email or password" {
		t.Fatalf("msg = %q", authErr.Msg)
	}
	if store.Authenticated() {
		t.Fatal("failed login must not authenticate")
	}
}

func TestLoginNetworkErrorClassified(t *testing.T) {
	// Point at a closed server to force a transport error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	store := NewStore(srv.URL, time.Second, nil)
	_, err := store.Login(context.Background(), "worker@shop.lk", "pw")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
}

func TestLoginValidatesInputBeforeNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	store := NewStore(srv.URL, time.Second, nil)
	if _, err := store.Login(context.Background(), "not-an-email", "pw"); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := store.Login(context.Background(), "worker@shop.lk", ""); err == nil {
		t.Fatal("expected validation error for empty password")
	}
	if calls != 0 {
		t.Fatalf("validation failures must not reach the network, got %d calls", calls)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	store := NewStore("http://localhost", time.Second, nil)
	store.SetToken("tok", &models.User{ID: "u1"})
	store.Logout()
	if store.Authenticated() || store.Token() != "" || store.User() != nil {
		t.Fatal("logout must clear token and user")
	}
}

func TestLoginMissingTokenHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.User{ID: "u1"})
	}))
	defer srv.Close()

	store := NewStore(srv.URL, time.Second, nil)
	_, err := store.Login(context.Background(), "worker@shop.lk", "pw")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthError for missing token", err)
	}
}
