// Package session owns the selector state of one viewer. Selector changes
// re-render immediately; search text is debounced so only the latest pending
// query renders.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/RossFW/atlas-conquest/internal/analytics/view"
	"github.com/RossFW/atlas-conquest/internal/dataset"
)

// DefaultSearchDebounce is the quiet period before a search renders.
const DefaultSearchDebounce = 200 * time.Millisecond

// RenderFunc receives every rendered model.
type RenderFunc func(view.Model, error)

// Config configures a Controller.
type Config struct {
	SearchDebounce time.Duration
	// OnRender is called after each render, outside the controller lock.
	OnRender RenderFunc
	Logger   *slog.Logger
}

// Controller holds one request and renders it against the store's current
// snapshot.
type Controller struct {
	engine *view.Engine
	store  *dataset.Store
	cfg    Config

	mu        sync.Mutex
	req       view.Request
	gen       uint64
	debounced func(func())
	closed    bool
	cancel    func()
}

// New creates a controller starting at req. It re-renders whenever the
// store swaps in a new snapshot until Close is called.
func New(engine *view.Engine, store *dataset.Store, req view.Request, cfg Config) *Controller {
	if cfg.SearchDebounce <= 0 {
		cfg.SearchDebounce = DefaultSearchDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Controller{
		engine:    engine,
		store:     store,
		cfg:       cfg,
		req:       req,
		debounced: debounce.New(cfg.SearchDebounce),
	}
	c.cancel = store.OnSwap(func(snap *dataset.Snapshot) {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		req := c.req
		c.mu.Unlock()

		c.cfg.Logger.Debug("dataset swapped, re-rendering", "version", snap.Version, "page", req.Page)
		c.emit(c.engine.Render(snap, req))
	})
	return c
}

// Request returns the current request.
func (c *Controller) Request() view.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.req
}

// Render renders the current request without changing it.
func (c *Controller) Render() (view.Model, error) {
	return c.engine.Render(c.store.Current(), c.Request())
}

// SetPage switches page. The sort state resets to the new page's default.
func (c *Controller) SetPage(p view.Page) (view.Model, error) {
	return c.apply(func(r view.Request) view.Request { return r.WithPage(p) })
}

// SetPeriod selects a period.
func (c *Controller) SetPeriod(id string) (view.Model, error) {
	return c.apply(func(r view.Request) view.Request { return r.WithPeriod(id) })
}

// SetFaction selects a faction filter.
func (c *Controller) SetFaction(f string) (view.Model, error) {
	return c.apply(func(r view.Request) view.Request { return r.WithFaction(f) })
}

// SetCommander selects the commander scope.
func (c *Controller) SetCommander(name string) (view.Model, error) {
	return c.apply(func(r view.Request) view.Request { return r.WithCommander(name) })
}

// SelectSort applies a column header click.
func (c *Controller) SelectSort(key string) (view.Model, error) {
	snap := c.store.Current()
	return c.apply(func(r view.Request) view.Request { return c.engine.SelectSort(snap, r, key) })
}

// Replace installs a whole request, for example a saved view. Any pending
// search is dropped.
func (c *Controller) Replace(req view.Request) (view.Model, error) {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
	return c.apply(func(view.Request) view.Request { return req })
}

// Search schedules a render with text as the search query. Calls within the
// debounce window coalesce; only the last one renders.
func (c *Controller) Search(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.debounced(func() {
		c.mu.Lock()
		if c.closed || gen != c.gen {
			c.mu.Unlock()
			return
		}
		c.req = c.req.WithSearch(text)
		req := c.req
		c.mu.Unlock()

		c.emit(c.engine.Render(c.store.Current(), req))
	})
}

// Close stops re-rendering on dataset swaps and drops pending searches.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	c.mu.Unlock()
	c.cancel()
}

// apply updates the request and renders it synchronously. A pending search
// still lands afterwards, on top of the updated request.
func (c *Controller) apply(fn func(view.Request) view.Request) (view.Model, error) {
	c.mu.Lock()
	c.req = fn(c.req)
	req := c.req
	c.mu.Unlock()

	m, err := c.engine.Render(c.store.Current(), req)
	c.emit(m, err)
	return m, err
}

func (c *Controller) emit(m view.Model, err error) {
	if err != nil {
		c.cfg.Logger.Warn("render failed", "error", err)
	}
	if c.cfg.OnRender != nil {
		c.cfg.OnRender(m, err)
	}
}
