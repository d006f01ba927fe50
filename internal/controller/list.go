package controller

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"shopfloor/internal/models"
)

// listAPI is the slice of the API client the list controller needs.
type listAPI interface {
	ListJobs(ctx context.Context, filter models.Filter, page, size int) (models.Page, error)
	ListJobsAt(ctx context.Context, cursor string) (models.Page, error)
	ListMyJobs(ctx context.Context, filter models.Filter) ([]models.JobSummary, error)
}

// ListMode selects which backend list a controller drives.
type ListMode int

const (
	// ModePaged is the main job board: paginated, cursor-driven.
	ModePaged ListMode = iota
	// ModeAssigned is the "my jobs" view: one non-paginated fetch.
	ModeAssigned
)

// ListController owns the job collection for one list screen. Items are
// append-only within one paging run; a refresh discards them wholesale. The
// loading flag is the only concurrency control: overlapping refreshes and
// load-mores are dropped, never queued.
type ListController struct {
	mu         sync.Mutex
	api        listAPI
	mode       ListMode
	pageSize   int
	log        *logrus.Logger
	items      []models.JobSummary
	nextCursor string
	filter     models.Filter
	loading    bool
	err        error
	gen        uint64
}

// ListSnapshot is the read-only view handed to the presentation layer.
type ListSnapshot struct {
	Items   []models.JobSummary
	Loading bool
	HasMore bool
	Err     error
}

// NewListController builds a controller over the given list endpoint.
func NewListController(api listAPI, mode ListMode, filter models.Filter, pageSize int, log *logrus.Logger) *ListController {
	if pageSize <= 0 {
		pageSize = 50
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ListController{
		api:      api,
		mode:     mode,
		pageSize: pageSize,
		filter:   filter,
		log:      log,
	}
}

// Refresh discards the current items and fetches the first page under the
// current filter. A refresh requested while one is in flight is dropped.
func (c *ListController) Refresh(ctx context.Context) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		c.log.Debug("refresh dropped: load in flight")
		return
	}
	c.loading = true
	c.gen++
	myGen := c.gen
	prevItems, prevCursor := c.items, c.nextCursor
	c.items = nil
	c.nextCursor = ""
	c.err = nil
	filter := c.filter
	c.mu.Unlock()

	var (
		page models.Page
		err  error
	)
	if c.mode == ModeAssigned {
		var jobs []models.JobSummary
		jobs, err = c.api.ListMyJobs(ctx, filter)
		page = models.Page{Items: jobs}
	} else {
		page, err = c.api.ListJobs(ctx, filter, 0, c.pageSize)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.gen != myGen {
		// A newer refresh superseded this one; its response owns the list.
		return
	}
	if err != nil {
		// Keep the last-good items on screen alongside the error.
		c.items, c.nextCursor = prevItems, prevCursor
		c.err = err
		c.log.WithError(err).Warn("refresh failed")
		return
	}
	c.items = page.Items
	c.nextCursor = page.Next
}

// LoadMore appends the next page. No-op when there is no cursor or a load is
// already in flight.
func (c *ListController) LoadMore(ctx context.Context) {
	c.mu.Lock()
	if c.loading || c.nextCursor == "" {
		c.mu.Unlock()
		return
	}
	c.loading = true
	myGen := c.gen
	cursor := c.nextCursor
	c.mu.Unlock()

	page, err := c.api.ListJobsAt(ctx, cursor)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.gen != myGen {
		return
	}
	if err != nil {
		c.err = err
		return
	}
	c.items = append(c.items, page.Items...)
	c.nextCursor = page.Next
}

// OnFocus re-runs the refresh with the current filter. Called every time the
// screen regains visibility, which bounds staleness after mutations made on
// other screens.
func (c *ListController) OnFocus(ctx context.Context) {
	c.Refresh(ctx)
}

// OnFilterChange replaces the filter and refreshes.
func (c *ListController) OnFilterChange(ctx context.Context, filter models.Filter) {
	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()
	c.Refresh(ctx)
}

// Filter returns the active filter.
func (c *ListController) Filter() models.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Snapshot returns the current list state for rendering.
func (c *ListController) Snapshot() ListSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]models.JobSummary, len(c.items))
	copy(items, c.items)
	return ListSnapshot{
		Items:   items,
		Loading: c.loading,
		HasMore: c.nextCursor != "",
		Err:     c.err,
	}
}
