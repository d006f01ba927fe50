package stubapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"shopfloor/internal/models"
	"shopfloor/internal/telemetry"
)

// Options configures the stub backend.
type Options struct {
	SigningSecret string
	TokenTTL      time.Duration
}

// credential is one seeded worker account.
type credential struct {
	Password string
	User     models.User
}

// Server is an in-memory stand-in for the shop backend, used by the e2e tests
// and runnable standalone for local development.
type Server struct {
	opts  Options
	log   *logrus.Logger
	mu    sync.Mutex
	jobs  map[string]*models.JobDetail
	order []string
	// assigned maps job id to the worker who claimed it.
	assigned map[string]string
	users    map[string]credential
}

// New constructs an empty stub server.
func New(opts Options, log *logrus.Logger) *Server {
	if opts.SigningSecret == "" {
		opts.SigningSecret = "dev-secret"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 8 * time.Hour
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		opts:     opts,
		log:      log,
		jobs:     make(map[string]*models.JobDetail),
		assigned: make(map[string]string),
		users:    make(map[string]credential),
	}
}

// AddUser seeds a worker account.
func (s *Server) AddUser(email, password string, user models.User) {
	s.mu.Lock()
	s.users[email] = credential{Password: password, User: user}
	s.mu.Unlock()
}

// AddJob seeds one job.
func (s *Server) AddJob(job models.JobDetail) {
	s.mu.Lock()
	j := job
	s.jobs[job.ID] = &j
	s.order = append(s.order, job.ID)
	s.mu.Unlock()
}

// Job returns a copy of the stored job, for assertions.
func (s *Server) Job(id string) (models.JobDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return models.JobDetail{}, false
	}
	return *j, true
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/metrics", telemetry.Handler())

	r.Post("/api/user/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/api/employee/job", s.handleListJobs)
		r.Get("/api/employee/job/employee", s.handleMyJobs)
		r.Get("/api/employee/job/{id}", s.handleGetJob)
		r.Post("/api/employee/job/assign/{id}", s.handleAssign)
		r.Put("/api/employee/job/start/{id}", s.handleStart)
		r.Put("/api/employee/job/done/{id}", s.handleDone)
	})

	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	cred, ok := s.users[req.Email]
	s.mu.Unlock()
	if !ok || cred.Password != req.Password {
		writeMsg(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	claims := jwt.MapClaims{
		"sub":   cred.User.ID,
		"email": cred.User.Email,
		"exp":   time.Now().Add(s.opts.TokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.SigningSecret))
	if err != nil {
		writeMsg(w, http.StatusInternalServerError, "token signing failed")
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	writeJSON(w, http.StatusOK, cred.User)
}

type ctxKey string

const userIDKey ctxKey = "userID"

// requireAuth verifies the bearer token and stashes the worker id.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeMsg(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(s.opts.SigningSecret), nil
		})
		if err != nil || !token.Valid {
			writeMsg(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, _ := token.Claims.(jwt.MapClaims)
		sub, _ := claims["sub"].(string)

		ctx := r.Context()
		next.ServeHTTP(w, r.WithContext(contextWithUser(ctx, sub)))
	})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	progress := models.ParseProgress(q.Get("progress"))
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	if size <= 0 {
		size = 50
	}

	s.mu.Lock()
	var matched []models.JobSummary
	for _, id := range s.order {
		j := s.jobs[id]
		if status != "" && j.Status != status {
			continue
		}
		if progress != models.ProgressAll && progress != "" && j.Progress != progress {
			continue
		}
		matched = append(matched, j.JobSummary)
	}
	s.mu.Unlock()

	start := page * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	next := ""
	if end < len(matched) {
		nq := r.URL.Query()
		nq.Set("page", strconv.Itoa(page+1))
		next = "http://" + r.Host + r.URL.Path + "?" + nq.Encode()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"content": matched[start:end]},
		"info": map[string]any{"next": next},
	})
}

func (s *Server) handleMyJobs(w http.ResponseWriter, r *http.Request) {
	userID := userFromContext(r.Context())
	q := r.URL.Query()
	status := q.Get("status")
	progress := models.ParseProgress(q.Get("progress"))

	s.mu.Lock()
	matched := []models.JobSummary{}
	for _, id := range s.order {
		j := s.jobs[id]
		if s.assigned[id] != userID {
			continue
		}
		if status != "" && j.Status != status {
			continue
		}
		if progress != models.ProgressAll && progress != "" && j.Progress != progress {
			continue
		}
		matched = append(matched, j.JobSummary)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"data": matched})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	job, ok := s.jobs[id]
	var out models.JobDetail
	if ok {
		out = *job
	}
	s.mu.Unlock()
	if !ok {
		writeMsg(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := userFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		writeMsg(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Progress != models.ProgressNew {
		writeMsg(w, http.StatusConflict, "job already assigned")
		return
	}
	job.Progress = models.ProgressPending
	s.assigned[id] = userID
	s.log.WithFields(logrus.Fields{"job": id, "worker": userID}).Info("job assigned")
	writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		writeMsg(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Progress != models.ProgressPending {
		writeMsg(w, http.StatusUnprocessableEntity, "job is not pending")
		return
	}
	job.Progress = models.ProgressProcessing
	writeJSON(w, http.StatusOK, map[string]string{"status": "processing"})
}

func (s *Server) handleDone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	job, ok := s.jobs[id]
	var requiresPhoto bool
	if ok {
		requiresPhoto = job.RequiresPhoto()
	}
	s.mu.Unlock()
	if !ok {
		writeMsg(w, http.StatusNotFound, "job not found")
		return
	}

	if requiresPhoto {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeMsg(w, http.StatusBadRequest, "completion photo required")
			return
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			writeMsg(w, http.StatusBadRequest, "completion photo required")
			return
		}
		_ = file.Close()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok = s.jobs[id]
	if !ok {
		writeMsg(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Progress != models.ProgressProcessing {
		writeMsg(w, http.StatusUnprocessableEntity, "job is not processing")
		return
	}
	job.Progress = models.ProgressDone
	writeJSON(w, http.StatusOK, map[string]string{"status": "done"})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMsg(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"msg": msg})
}
