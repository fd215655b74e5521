package listview

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/client/gateway"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/notify"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/jonboulle/clockwork"
)

const (
	DefaultPageSize = 10
	DefaultDebounce = 500 * time.Millisecond
)

// Source is the part of the gateway the controller drives.
type Source interface {
	ListUsers(ctx context.Context, q models.ListQuery) (*models.UserPage, error)
	DeleteUser(ctx context.Context, id string) error
	CreateUser(ctx context.Context, f models.UserFields) (*models.User, error)
	UpdateUser(ctx context.Context, id string, f models.UserFields) (*models.User, error)
}

// View is a consistent snapshot of the controller state.
type View struct {
	Page       int
	PageSize   int
	TotalPages int
	Search     string
	Records    []models.User
	Loading    bool
	Err        error
	HasPrev    bool
	HasNext    bool
}

// Controller keeps one paginated, searchable page of users in step with a
// Source.
type Controller struct {
	src      Source
	notifier notify.Notifier
	log      logging.Logger
	clock    clockwork.Clock

	pageSize     int
	debounce     time.Duration
	discardStale bool
	onChange     func(View)

	wg sync.WaitGroup

	mu         sync.Mutex
	ctx        context.Context
	active     bool
	page       int
	totalPages int
	search     string
	queried    string // term sent with the last issued fetch
	records    []models.User
	inflight   int
	err        error
	issued     uint64
	applied    uint64
	timer      clockwork.Timer
	searchGen  uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the clock driving the search debounce.
func WithClock(c clockwork.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

func WithPageSize(n int) Option {
	return func(ctl *Controller) {
		if n > 0 {
			ctl.pageSize = n
		}
	}
}

func WithDebounce(d time.Duration) Option {
	return func(ctl *Controller) {
		if d >= 0 {
			ctl.debounce = d
		}
	}
}

// WithDiscardStale controls whether an answer older than the last applied
// one is dropped. When off, whichever answer arrives last wins.
func WithDiscardStale(on bool) Option {
	return func(ctl *Controller) { ctl.discardStale = on }
}

func WithLogger(l logging.Logger) Option {
	return func(ctl *Controller) { ctl.log = l }
}

// WithOnChange registers fn to run after every applied result. fn runs
// without the controller lock held and may call View.
func WithOnChange(fn func(View)) Option {
	return func(ctl *Controller) { ctl.onChange = fn }
}

// New returns an active Controller on page 1. Nothing is fetched until
// Start.
func New(src Source, n notify.Notifier, opts ...Option) *Controller {
	c := &Controller{
		src:          src,
		notifier:     n,
		log:          logging.Discard(),
		clock:        clockwork.NewRealClock(),
		pageSize:     DefaultPageSize,
		debounce:     DefaultDebounce,
		discardStale: true,
		ctx:          context.Background(),
		active:       true,
		page:         1,
		totalPages:   1,
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("component", "listview")
	return c
}

// Start loads page 1 with an empty search and waits for the answer. ctx
// also bounds the background fetches issued later.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.stopTimerLocked()
	c.page = 1
	c.search = ""
	q, seq := c.issueLocked()
	c.mu.Unlock()

	return c.fetch(ctx, q, seq)
}

// Refresh reloads the current page and search and waits for the answer.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	q, seq := c.issueLocked()
	c.mu.Unlock()

	return c.fetch(ctx, q, seq)
}

// SetPage moves to page n, clamped to [1, TotalPages], and fetches it in
// the background. It reports whether a fetch was issued; moving to the
// page already shown is a no-op.
func (c *Controller) SetPage(n int) bool {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return false
	}
	n = max(1, min(n, c.totalPages))
	if n == c.page {
		c.mu.Unlock()
		return false
	}
	c.page = n
	ctx := c.ctx
	q, seq := c.issueLocked()
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		_ = c.fetch(ctx, q, seq)
	}()
	return true
}

func (c *Controller) NextPage() bool {
	return c.SetPage(c.currentPage() + 1)
}

func (c *Controller) PrevPage() bool {
	return c.SetPage(c.currentPage() - 1)
}

func (c *Controller) currentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// SetSearchTerm stores s at once and schedules a fetch after the debounce
// window. Every call restarts the window. When it fires the page goes back
// to 1 and the term current at that moment is used.
func (c *Controller) SetSearchTerm(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}

	c.search = s
	c.stopTimerLocked()
	c.searchGen++
	gen := c.searchGen
	c.wg.Add(1)
	c.timer = c.clock.AfterFunc(c.debounce, func() { c.fireSearch(gen) })
}

func (c *Controller) fireSearch(gen uint64) {
	defer c.wg.Done()

	c.mu.Lock()
	if !c.active || gen != c.searchGen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.page = 1
	ctx := c.ctx
	q, seq := c.issueLocked()
	c.mu.Unlock()

	_ = c.fetch(ctx, q, seq)
}

// caller must hold c.mu
func (c *Controller) stopTimerLocked() {
	if c.timer != nil && c.timer.Stop() {
		c.wg.Done()
	}
	c.timer = nil
}

// FetchPage loads one page synchronously. On success the shown records
// and page count are replaced; on failure they stay as they were and the
// operator is notified. It does not move the current page or search.
func (c *Controller) FetchPage(ctx context.Context, page, pageSize int, term string) error {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = c.pageSize
	}

	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.inflight++
	c.mu.Unlock()

	return c.fetch(ctx, models.ListQuery{Page: page, PageSize: pageSize, Search: term}, seq)
}

// issueLocked builds the query for the current page. While a search is
// still debouncing the previously fetched term is kept, so the page number
// always belongs to the term it was counted against. Caller must hold c.mu.
func (c *Controller) issueLocked() (models.ListQuery, uint64) {
	c.issued++
	c.inflight++
	if c.timer == nil {
		c.queried = c.search
	}
	return models.ListQuery{Page: c.page, PageSize: c.pageSize, Search: c.queried}, c.issued
}

func (c *Controller) fetch(ctx context.Context, q models.ListQuery, seq uint64) error {
	page, err := c.src.ListUsers(ctx, q)

	c.mu.Lock()
	c.inflight--
	if !c.active {
		c.mu.Unlock()
		c.log.Debug(ctx, "result after close dropped", "seq", seq)
		return err
	}
	if c.discardStale && seq < c.applied {
		applied := c.applied
		c.mu.Unlock()
		c.log.Debug(ctx, "stale result dropped", "seq", seq, "applied", applied)
		return err
	}

	if err != nil {
		c.err = err
		view := c.viewLocked()
		c.mu.Unlock()

		c.log.Warn(ctx, "fetching users failed", "page", q.Page, "search", q.Search, "error", err)
		if !errors.Is(err, gateway.ErrSessionExpired) {
			c.notifier.Error(ctx, "Failed to load users: "+gateway.Message(err))
		}
		c.changed(view)
		return err
	}

	c.records = slices.Clone(page.Data)
	if c.records == nil {
		c.records = []models.User{}
	}
	c.totalPages = page.TotalPages()
	c.err = nil
	c.applied = seq
	view := c.viewLocked()
	c.mu.Unlock()

	c.log.Debug(ctx, "users fetched", "page", q.Page, "search", q.Search, "count", len(view.Records), "seq", seq)
	c.changed(view)
	return nil
}

// DeleteRecord deletes id remotely. Only after the server confirms is the
// row removed from the shown page; a background fetch then reconciles the
// page count. On failure nothing local changes.
func (c *Controller) DeleteRecord(ctx context.Context, id string) error {
	if err := c.src.DeleteUser(ctx, id); err != nil {
		c.log.Warn(ctx, "deleting user failed", "id", id, "error", err)
		c.notifyFailure(ctx, "Failed to delete user", err)
		return err
	}

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return nil
	}
	c.records = slices.DeleteFunc(c.records, func(u models.User) bool { return u.ID == id })
	view := c.viewLocked()
	bg := c.ctx
	q, seq := c.issueLocked()
	c.wg.Add(1)
	c.mu.Unlock()

	c.notifier.Success(ctx, "User deleted successfully")
	c.changed(view)

	go func() {
		defer c.wg.Done()
		_ = c.fetch(bg, q, seq)
	}()
	return nil
}

// CreateRecord creates a user and then reloads the current page once, so
// the shown row is what the server stored.
func (c *Controller) CreateRecord(ctx context.Context, f models.UserFields) (*models.User, error) {
	if err := f.ValidateCreate(); err != nil {
		return nil, err
	}

	u, err := c.src.CreateUser(ctx, f)
	if err != nil {
		c.log.Warn(ctx, "creating user failed", "error", err)
		c.notifyFailure(ctx, "Failed to create user", err)
		return nil, err
	}
	c.notifier.Success(ctx, "User created successfully")
	c.reload(ctx)
	return u, nil
}

// UpdateRecord updates id and then reloads the current page once.
func (c *Controller) UpdateRecord(ctx context.Context, id string, f models.UserFields) (*models.User, error) {
	if f.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", models.ErrRequired)
	}

	u, err := c.src.UpdateUser(ctx, id, f)
	if err != nil {
		c.log.Warn(ctx, "updating user failed", "id", id, "error", err)
		c.notifyFailure(ctx, "Failed to update user", err)
		return nil, err
	}
	c.notifier.Success(ctx, "User updated successfully")
	c.reload(ctx)
	return u, nil
}

func (c *Controller) reload(ctx context.Context) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	q, seq := c.issueLocked()
	c.mu.Unlock()

	_ = c.fetch(ctx, q, seq)
}

func (c *Controller) notifyFailure(ctx context.Context, what string, err error) {
	if errors.Is(err, gateway.ErrSessionExpired) {
		return
	}
	c.notifier.Error(ctx, what+": "+gateway.Message(err))
}

// Close stops the pending search timer. Results arriving afterwards are
// not applied. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	c.stopTimerLocked()
}

// Wait blocks until the pending search timer and background fetches are
// done.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// caller must hold c.mu
func (c *Controller) viewLocked() View {
	return View{
		Page:       c.page,
		PageSize:   c.pageSize,
		TotalPages: c.totalPages,
		Search:     c.search,
		Records:    slices.Clone(c.records),
		Loading:    c.inflight > 0,
		Err:        c.err,
		HasPrev:    c.page > 1,
		HasNext:    c.page < c.totalPages,
	}
}

func (c *Controller) changed(v View) {
	if c.onChange != nil {
		c.onChange(v)
	}
}
