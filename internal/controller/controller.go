// Package controller owns the search interaction state: the query, mode
// and filter fields the user edits, the request lifecycle, and the view
// model the renderer reads.
//
// A Controller belongs to exactly one UI session and must be driven from
// a single goroutine (the bubbletea update loop, or a test). Network
// round trips happen elsewhere; callers take a sequence-numbered snapshot
// with Submit, perform the request, and hand the outcome back to Resolve.
// Resolve discards any completion that is not for the latest issued
// sequence, so a slow earlier request can never overwrite the outcome of
// a later one.
package controller

import (
	"github.com/srndpty/j-law-grep/internal/api"
	"github.com/srndpty/j-law-grep/internal/errors"
)

// Filters are the staged filter fields. Empty means no constraint.
type Filters struct {
	Law  string
	Year string
}

// State is the mutable interaction state for one session.
// It is mutated only through Controller methods.
type State struct {
	Query    string
	Mode     api.Mode
	Filters  Filters
	Page     int
	PageSize int
}

// DefaultState mirrors the search screen's initial values: the 民法 709条
// (tort damages) query with the law filter pre-staged.
func DefaultState() State {
	return State{
		Query:    "民法 709条",
		Mode:     api.ModeLiteral,
		Filters:  Filters{Law: "民法"},
		Page:     1,
		PageSize: api.DefaultSize,
	}
}

// ViewModel is the renderer-facing projection of controller state.
type ViewModel struct {
	// Response is the last successful response. Zero value before the
	// first completion; left untouched by failed requests so stale
	// results stay visible under the error banner.
	Response api.SearchResponse

	// Loading is true strictly between a Submit and its accepted
	// completion.
	Loading bool

	// Err is the user-facing message of the last failed request, empty
	// after a success or a fresh Submit.
	Err string

	// Retryable reports whether the failure behind Err is worth
	// resubmitting unchanged. False whenever Err is empty.
	Retryable bool
}

// Controller translates user intent into search requests and completed
// requests into a renderable view model, one request at a time.
type Controller struct {
	state State
	vm    ViewModel

	// seq is the sequence number of the most recently issued request.
	// Completions carrying any other sequence are stale and discarded.
	seq uint64

	liveSearch bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLiveSearch makes mode and filter changes request an immediate
// resubmit instead of staging until the next explicit submit.
func WithLiveSearch(enabled bool) Option {
	return func(c *Controller) {
		c.liveSearch = enabled
	}
}

// New creates a controller starting from the given state.
func New(initial State, opts ...Option) *Controller {
	if initial.Page < 1 {
		initial.Page = 1
	}
	if initial.PageSize < api.MinSize || initial.PageSize > api.MaxSize {
		initial.PageSize = api.DefaultSize
	}
	c := &Controller{state: initial}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current interaction state.
func (c *Controller) State() State {
	return c.state
}

// View returns the current view model.
func (c *Controller) View() ViewModel {
	return c.vm
}

// SetLiveSearch flips live search at runtime, for config reloads
// mid-session. Takes effect from the next mode or filter edit.
func (c *Controller) SetLiveSearch(enabled bool) {
	c.liveSearch = enabled
}

// SetQuery updates the query text. Never issues a request.
func (c *Controller) SetQuery(q string) {
	c.state.Query = q
}

// SetMode updates the query interpretation mode. The returned flag tells
// the caller to resubmit immediately; it is true only under live search.
func (c *Controller) SetMode(m api.Mode) bool {
	if !m.Valid() || m == c.state.Mode {
		return false
	}
	c.state.Mode = m
	return c.liveSearch
}

// SetFilter updates a named filter field. An empty value clears the
// constraint. The returned flag tells the caller to resubmit immediately;
// it is true only under live search.
func (c *Controller) SetFilter(key, value string) bool {
	switch key {
	case api.FilterLaw:
		if c.state.Filters.Law == value {
			return false
		}
		c.state.Filters.Law = value
	case api.FilterYear:
		if c.state.Filters.Year == value {
			return false
		}
		c.state.Filters.Year = value
	default:
		return false
	}
	return c.liveSearch
}

// SetPage moves to the given 1-based page. The returned flag reports
// whether the page actually changed after clamping; callers resubmit
// only then (pagination is navigation, not a staged edit).
func (c *Controller) SetPage(p int) bool {
	if p < 1 {
		p = 1
	}
	if p == c.state.Page {
		return false
	}
	c.state.Page = p
	return true
}

// SetPageSize updates the page size, clamped to backend bounds.
func (c *Controller) SetPageSize(n int) {
	if n < api.MinSize {
		n = api.MinSize
	}
	if n > api.MaxSize {
		n = api.MaxSize
	}
	c.state.PageSize = n
}

// Snapshot derives an immutable request from the current state. Filter
// fields with empty values are omitted entirely: the backend reads an
// absent key as "no constraint", never as "match empty".
func (c *Controller) Snapshot() api.SearchRequest {
	req := api.SearchRequest{
		Q:    c.state.Query,
		Mode: c.state.Mode,
		Size: c.state.PageSize,
		Page: c.state.Page,
	}
	filters := make(map[string]string)
	if c.state.Filters.Law != "" {
		filters[api.FilterLaw] = c.state.Filters.Law
	}
	if c.state.Filters.Year != "" {
		filters[api.FilterYear] = c.state.Filters.Year
	}
	if len(filters) > 0 {
		req.Filters = filters
	}
	return req
}

// Submit starts a new request: it snapshots the state, marks the view
// loading, clears any prior error, and returns the sequence number the
// completion must present to Resolve. Always usable, including while an
// earlier request is still outstanding; the earlier one becomes stale.
func (c *Controller) Submit() (uint64, api.SearchRequest) {
	c.seq++
	c.vm.Loading = true
	c.vm.Err = ""
	c.vm.Retryable = false
	return c.seq, c.Snapshot()
}

// Resolve applies the outcome of a completed request. Exactly one of resp
// or err is consulted. Completions whose sequence is not the latest
// issued are discarded without touching any field; the return value
// reports whether the completion was applied.
//
// On success the response replaces the view's response and the error is
// cleared. On failure the error message is set and the previous response
// is left untouched.
func (c *Controller) Resolve(seq uint64, resp *api.SearchResponse, err error) bool {
	if seq != c.seq {
		return false
	}

	c.vm.Loading = false
	if err != nil {
		c.vm.Err = errors.UserMessage(err)
		c.vm.Retryable = errors.IsRetryable(err)
		return true
	}

	c.vm.Err = ""
	c.vm.Retryable = false
	if resp != nil {
		c.vm.Response = *resp
	}
	return true
}

// Loading reports whether a request is outstanding.
func (c *Controller) Loading() bool {
	return c.vm.Loading
}

// LatestSeq returns the sequence number of the most recently issued
// request. Zero before the first Submit.
func (c *Controller) LatestSeq() uint64 {
	return c.seq
}
