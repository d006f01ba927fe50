package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"shopfloor/internal/models"
)

// fakeListAPI serves canned pages keyed by filter and cursor, optionally
// blocking until released to exercise the loading guard.
type fakeListAPI struct {
	mu        sync.Mutex
	pages     map[string]models.Page // filter key -> first page
	cursors   map[string]models.Page // cursor -> page
	mine      []models.JobSummary
	err       error
	calls     int
	block     chan struct{} // when non-nil, fetches wait here
	started   chan struct{} // signals a fetch has begun
}

func filterKey(f models.Filter) string {
	return f.Status + "/" + string(f.Progress)
}

func (f *fakeListAPI) begin() {
	f.mu.Lock()
	f.calls++
	block := f.block
	started := f.started
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
}

func (f *fakeListAPI) ListJobs(_ context.Context, filter models.Filter, _, _ int) (models.Page, error) {
	f.begin()
	if f.err != nil {
		return models.Page{}, f.err
	}
	return f.pages[filterKey(filter)], nil
}

func (f *fakeListAPI) ListJobsAt(_ context.Context, cursor string) (models.Page, error) {
	f.begin()
	if f.err != nil {
		return models.Page{}, f.err
	}
	return f.cursors[cursor], nil
}

func (f *fakeListAPI) ListMyJobs(_ context.Context, _ models.Filter) ([]models.JobSummary, error) {
	f.begin()
	if f.err != nil {
		return nil, f.err
	}
	return f.mine, nil
}

func (f *fakeListAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func job(id string) models.JobSummary {
	return models.JobSummary{ID: id, Status: "ACTIVE", Progress: models.ProgressNew}
}

func activeNew() models.Filter {
	return models.Filter{Status: "ACTIVE", Progress: models.ProgressNew}
}

func TestRefreshLoadsFirstPage(t *testing.T) {
	fake := &fakeListAPI{
		pages: map[string]models.Page{
			"ACTIVE/NEW": {Items: []models.JobSummary{job("j1"), job("j2")}, Next: "cur-2"},
		},
	}
	c := NewListController(fake, ModePaged, activeNew(), 50, nil)
	c.Refresh(context.Background())

	snap := c.Snapshot()
	if len(snap.Items) != 2 || snap.Items[0].ID != "j1" {
		t.Fatalf("items: %+v", snap.Items)
	}
	if !snap.HasMore {
		t.Fatal("expected HasMore with a cursor present")
	}
	if snap.Loading {
		t.Fatal("loading must be cleared after refresh")
	}
}

func TestRefreshDroppedWhileLoading(t *testing.T) {
	fake := &fakeListAPI{
		pages:   map[string]models.Page{"ACTIVE/NEW": {Items: []models.JobSummary{job("j1")}}},
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	c := NewListController(fake, ModePaged, activeNew(), 50, nil)

	done := make(chan struct{})
	go func() {
		c.Refresh(context.Background())
		close(done)
	}()
	<-fake.started

	// Second refresh while the first is in flight must be a no-op.
	c.Refresh(context.Background())
	if got := fake.callCount(); got != 1 {
		t.Fatalf("calls = %d, want 1 (second refresh dropped)", got)
	}

	close(fake.block)
	<-done
	if len(c.Snapshot().Items) != 1 {
		t.Fatalf("items: %+v", c.Snapshot().Items)
	}
}

func TestFiltersNeverInterleave(t *testing.T) {
	newFilter := activeNew()
	doneFilter := models.Filter{Status: "ACTIVE", Progress: models.ProgressDone}
	fake := &fakeListAPI{
		pages: map[string]models.Page{
			"ACTIVE/NEW":  {Items: []models.JobSummary{job("new-1")}},
			"ACTIVE/DONE": {Items: []models.JobSummary{job("done-1")}},
		},
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	c := NewListController(fake, ModePaged, newFilter, 50, nil)

	done := make(chan struct{})
	go func() {
		c.Refresh(context.Background())
		close(done)
	}()
	<-fake.started

	// Filter change while the first refresh is outstanding: its refresh is
	// dropped, the filter is recorded for the next one.
	c.OnFilterChange(context.Background(), doneFilter)

	close(fake.block)
	<-done

	snap := c.Snapshot()
	for _, it := range snap.Items {
		if it.ID == "done-1" {
			t.Fatal("items interleaved across filters")
		}
	}

	// The next focus refresh serves the new filter exclusively.
	fake.mu.Lock()
	fake.block = nil
	fake.mu.Unlock()
	c.OnFocus(context.Background())
	snap = c.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].ID != "done-1" {
		t.Fatalf("items after filter change: %+v", snap.Items)
	}
}

func TestLoadMoreAppendsWithoutDuplicates(t *testing.T) {
	fake := &fakeListAPI{
		pages: map[string]models.Page{
			"ACTIVE/NEW": {Items: []models.JobSummary{job("j1"), job("j2")}, Next: "cur-2"},
		},
		cursors: map[string]models.Page{
			"cur-2": {Items: []models.JobSummary{job("j3")}},
		},
	}
	c := NewListController(fake, ModePaged, activeNew(), 2, nil)
	c.Refresh(context.Background())
	c.LoadMore(context.Background())

	snap := c.Snapshot()
	if len(snap.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(snap.Items))
	}
	seen := map[string]bool{}
	for _, it := range snap.Items {
		if seen[it.ID] {
			t.Fatalf("duplicate id %s in one paging run", it.ID)
		}
		seen[it.ID] = true
	}
	if snap.HasMore {
		t.Fatal("cursor exhausted, HasMore must be false")
	}
}

func TestLoadMoreNoCursorIsNoOp(t *testing.T) {
	fake := &fakeListAPI{
		pages: map[string]models.Page{"ACTIVE/NEW": {Items: []models.JobSummary{job("j1")}}},
	}
	c := NewListController(fake, ModePaged, activeNew(), 50, nil)
	c.Refresh(context.Background())

	before := fake.callCount()
	c.LoadMore(context.Background())
	if fake.callCount() != before {
		t.Fatal("LoadMore with empty cursor must not hit the network")
	}
	if len(c.Snapshot().Items) != 1 {
		t.Fatal("items changed on no-op LoadMore")
	}
}

func TestRefreshFailureKeepsLastGoodItems(t *testing.T) {
	fake := &fakeListAPI{
		pages: map[string]models.Page{"ACTIVE/NEW": {Items: []models.JobSummary{job("j1")}}},
	}
	c := NewListController(fake, ModePaged, activeNew(), 50, nil)
	c.Refresh(context.Background())

	fake.err = errors.New("boom")
	c.Refresh(context.Background())

	snap := c.Snapshot()
	if snap.Err == nil {
		t.Fatal("expected surfaced error")
	}
	if len(snap.Items) != 1 || snap.Items[0].ID != "j1" {
		t.Fatalf("last-good items lost: %+v", snap.Items)
	}
}

func TestAssignedModeFetchesMyJobs(t *testing.T) {
	fake := &fakeListAPI{
		mine: []models.JobSummary{job("mine-1"), job("mine-2")},
	}
	c := NewListController(fake, ModeAssigned, models.Filter{Status: "ACTIVE", Progress: models.ProgressAll}, 50, nil)
	c.Refresh(context.Background())

	snap := c.Snapshot()
	if len(snap.Items) != 2 {
		t.Fatalf("items: %+v", snap.Items)
	}
	if snap.HasMore {
		t.Fatal("assigned view is not paginated")
	}
}

func TestOnFocusRefreshes(t *testing.T) {
	fake := &fakeListAPI{
		pages: map[string]models.Page{"ACTIVE/NEW": {Items: []models.JobSummary{job("j1")}}},
	}
	c := NewListController(fake, ModePaged, activeNew(), 50, nil)
	c.OnFocus(context.Background())
	c.OnFocus(context.Background())
	if got := fake.callCount(); got != 2 {
		t.Fatalf("calls = %d, want one fetch per focus", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	fake := &fakeListAPI{
		pages: map[string]models.Page{"ACTIVE/NEW": {Items: []models.JobSummary{job("j1")}}},
	}
	c := NewListController(fake, ModePaged, activeNew(), 50, nil)
	c.Refresh(context.Background())

	snap := c.Snapshot()
	snap.Items[0].ID = "mutated"
	if c.Snapshot().Items[0].ID != "j1" {
		t.Fatal("snapshot must not alias controller state")
	}
}

func TestPagingRunSequence(t *testing.T) {
	// Three pages chained by cursors; items arrive in order.
	fake := &fakeListAPI{
		pages: map[string]models.Page{
			"ACTIVE/NEW": {Items: []models.JobSummary{job("p0-a"), job("p0-b")}, Next: "c1"},
		},
		cursors: map[string]models.Page{
			"c1": {Items: []models.JobSummary{job("p1-a")}, Next: "c2"},
			"c2": {Items: []models.JobSummary{job("p2-a")}},
		},
	}
	c := NewListController(fake, ModePaged, activeNew(), 2, nil)
	c.Refresh(context.Background())
	c.LoadMore(context.Background())
	c.LoadMore(context.Background())
	c.LoadMore(context.Background()) // cursor empty now, no-op

	snap := c.Snapshot()
	want := []string{"p0-a", "p0-b", "p1-a", "p2-a"}
	if len(snap.Items) != len(want) {
		t.Fatalf("items = %d, want %d", len(snap.Items), len(want))
	}
	for i, id := range want {
		if snap.Items[i].ID != id {
			t.Fatalf("items[%d] = %s, want %s", i, snap.Items[i].ID, id)
		}
	}
	if got := fake.callCount(); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}
