package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"shopfloor/internal/models"
)

// ErrUnreachable marks a login attempt that never produced a server response.
var ErrUnreachable = errors.New("login service unreachable")

// AuthError is a login rejected by the server. Msg carries the server-supplied
// message when one was present.
type AuthError struct {
	Status int
	Msg    string
}

func (e *AuthError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("login rejected (status %d)", e.Status)
}

// Store holds the bearer token and worker profile for the process lifetime.
// Single writer (login/logout at session boundaries), many readers.
type Store struct {
	mu      sync.RWMutex
	session models.Session

	baseURL  string
	client   *http.Client
	validate *validator.Validate
	log      *logrus.Logger
}

// NewStore builds an empty store that logs in against baseURL.
func NewStore(baseURL string, timeout time.Duration, log *logrus.Logger) *Store {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		validate: validator.New(),
		log:      log,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginErrorBody struct {
	Msg string `json:"msg"`
}

// Login authenticates the worker. The bearer token arrives in the
// Authorization response header, the profile in the body. Input is validated
// locally before any network call.
func (s *Store) Login(ctx context.Context, email, password string) (models.Session, error) {
	req := loginRequest{Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return models.Session{}, fmt.Errorf("invalid credentials input: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return models.Session{}, fmt.Errorf("marshal login request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/user/login", bytes.NewReader(body))
	if err != nil {
		return models.Session{}, fmt.Errorf("build login request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.log.WithError(err).Warn("login request failed before reaching server")
		return models.Session{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Session{}, fmt.Errorf("read login response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb loginErrorBody
		_ = json.Unmarshal(respBody, &eb)
		return models.Session{}, &AuthError{Status: resp.StatusCode, Msg: eb.Msg}
	}

	token := bearerFromHeader(resp.Header.Get("Authorization"))
	if token == "" {
		return models.Session{}, &AuthError{Status: resp.StatusCode, Msg: "no token in login response"}
	}

	var user models.User
	if err := json.Unmarshal(respBody, &user); err != nil {
		return models.Session{}, fmt.Errorf("decode user payload: %w", err)
	}

	sess := models.Session{Token: token, User: &user}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	s.log.WithField("user", user.Email).Info("logged in")
	return sess, nil
}

// Logout clears the session. Local only, always succeeds.
func (s *Store) Logout() {
	s.mu.Lock()
	s.session = models.Session{}
	s.mu.Unlock()
	s.log.Info("logged out")
}

// Token returns the current bearer token, empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// Authenticated reports whether a login has completed.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Authenticated()
}

// User returns the logged-in profile, nil when logged out.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.User
}

// SetToken installs a known-good credential without a login round trip.
// Used by tests and by tooling that already holds a token.
func (s *Store) SetToken(token string, user *models.User) {
	s.mu.Lock()
	s.session = models.Session{Token: token, User: user}
	s.mu.Unlock()
}

func bearerFromHeader(h string) string {
	parts := strings.SplitN(h, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
