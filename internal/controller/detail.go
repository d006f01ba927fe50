package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"shopfloor/internal/api"
	"shopfloor/internal/media"
	"shopfloor/internal/models"
)

// jobAPI is the slice of the API client the detail controller needs.
type jobAPI interface {
	GetJob(ctx context.Context, id string) (models.JobDetail, error)
	AssignJob(ctx context.Context, id string) error
	StartJob(ctx context.Context, id string) error
	CompleteJob(ctx context.Context, id string, photo *media.Photo) error
}

var (
	// ErrPhotoRequired blocks completion of quotation-created jobs until a
	// photo is attached. No network call is made.
	ErrPhotoRequired = errors.New("a completion photo is required for this job")

	// ErrIllegalTransition is returned when the requested action is not
	// legal from the job's current progress state.
	ErrIllegalTransition = errors.New("action not allowed in current state")

	// ErrActionInFlight is returned when another call holds the loading flag.
	ErrActionInFlight = errors.New("another action is in flight")

	// ErrNoJob is returned for actions before a job is loaded.
	ErrNoJob = errors.New("no job loaded")
)

// DetailController owns a single job's lifecycle. Progress only moves through
// the transition table; successful transitions advance local state
// provisionally (the next list refresh is authoritative) and navigate away
// when the job no longer belongs on the current screen.
type DetailController struct {
	mu  sync.Mutex
	api jobAPI
	nav Navigator
	log *logrus.Logger

	job      *models.JobDetail
	loading  bool
	err      error
	notFound bool
	photo    *media.Photo
}

// DetailSnapshot is the read-only view handed to the presentation layer.
type DetailSnapshot struct {
	Job           *models.JobDetail
	Loading       bool
	Err           error
	NotFound      bool
	PhotoSelected bool
}

// NewDetailController builds a controller bound to a navigator.
func NewDetailController(jobs jobAPI, nav Navigator, log *logrus.Logger) *DetailController {
	if nav == nil {
		nav = NopNavigator{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DetailController{api: jobs, nav: nav, log: log}
}

// Load fetches the job. Not-found is terminal for the screen; other errors
// are recoverable.
func (c *DetailController) Load(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrActionInFlight
	}
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	job, err := c.api.GetJob(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			c.notFound = true
		}
		c.err = err
		return err
	}
	c.job = &job
	c.notFound = false
	return nil
}

// Assign claims the job. Legal only from NEW; on success the job leaves the
// unassigned board, so the screen navigates back to the main list.
func (c *DetailController) Assign(ctx context.Context) error {
	return c.transition(ctx, models.ActionAssign, ScreenMainList, func(ctx context.Context, id string) error {
		return c.api.AssignJob(ctx, id)
	})
}

// Start moves the job into processing and returns to the pending list.
func (c *DetailController) Start(ctx context.Context) error {
	return c.transition(ctx, models.ActionStart, ScreenPendingList, func(ctx context.Context, id string) error {
		return c.api.StartJob(ctx, id)
	})
}

// Complete finishes the job. Jobs created from a customer order require an
// attached photo; the check happens before any network call.
func (c *DetailController) Complete(ctx context.Context) error {
	c.mu.Lock()
	if c.job != nil && c.job.RequiresPhoto() && c.photo == nil {
		c.err = ErrPhotoRequired
		c.mu.Unlock()
		return ErrPhotoRequired
	}
	var photo *media.Photo
	if c.job != nil && c.job.RequiresPhoto() {
		photo = c.photo
	}
	c.mu.Unlock()

	err := c.transition(ctx, models.ActionComplete, ScreenPendingList, func(ctx context.Context, id string) error {
		return c.api.CompleteJob(ctx, id, photo)
	})
	if err == nil {
		c.mu.Lock()
		c.photo = nil
		c.mu.Unlock()
	}
	return err
}

// transition runs the shared guard/advance/navigate path for one action.
// HTTP failure leaves progress unchanged and is recoverable.
func (c *DetailController) transition(ctx context.Context, action models.Action, nextScreen string, call func(context.Context, string) error) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrActionInFlight
	}
	if c.job == nil {
		c.mu.Unlock()
		return ErrNoJob
	}
	next, ok := models.Next(c.job.Progress, action)
	if !ok {
		c.err = ErrIllegalTransition
		c.mu.Unlock()
		return ErrIllegalTransition
	}
	id := c.job.ID
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	err := call(ctx, id)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.err = err
		c.mu.Unlock()
		c.log.WithError(err).WithField("action", action).Warn("transition failed, progress unchanged")
		return err
	}
	// Provisional local advance; the server remains the source of truth and
	// the next list refresh confirms it.
	c.job.Progress = next
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"job": id, "action": action, "progress": next}).Info("job transitioned")
	c.nav.NavigateTo(nextScreen, map[string]string{"jobId": id})
	return nil
}

// AttachPhoto selects the completion photo. A new selection replaces any
// prior one; there is no multi-photo attachment.
func (c *DetailController) AttachPhoto(p *media.Photo) {
	c.mu.Lock()
	c.photo = p
	c.mu.Unlock()
}

// ClearPhoto drops the pending selection.
func (c *DetailController) ClearPhoto() {
	c.mu.Lock()
	c.photo = nil
	c.mu.Unlock()
}

// Snapshot returns the current detail state for rendering.
func (c *DetailController) Snapshot() DetailSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	var job *models.JobDetail
	if c.job != nil {
		j := *c.job
		job = &j
	}
	return DetailSnapshot{
		Job:           job,
		Loading:       c.loading,
		Err:           c.err,
		NotFound:      c.notFound,
		PhotoSelected: c.photo != nil,
	}
}
