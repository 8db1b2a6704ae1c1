// Package view assembles page view models from a dataset snapshot and a
// selector request. Rendering is pure: the same snapshot and request always
// produce the same model, and nothing is cached between calls.
package view

import (
	"fmt"

	"github.com/RossFW/atlas-conquest/internal/analytics/bucket"
	"github.com/RossFW/atlas-conquest/internal/analytics/faction"
	"github.com/RossFW/atlas-conquest/internal/analytics/filter"
	"github.com/RossFW/atlas-conquest/internal/analytics/period"
	"github.com/RossFW/atlas-conquest/internal/analytics/suppression"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/models"
)

// Config holds the rule set shared by every page.
type Config struct {
	Policy   suppression.Policy
	Palette  *faction.Palette
	Periods  period.Keys
	Fallback string
	// MinPlayerGames is the leaderboard entry requirement.
	MinPlayerGames int
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		Policy:         suppression.DefaultPolicy(),
		Palette:        faction.NewPalette(faction.SchemeSix),
		Periods:        period.DefaultKeys(),
		Fallback:       period.AllTime,
		MinPlayerGames: 10,
	}
}

// Engine renders view models.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine, filling unset fields from DefaultConfig.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.Palette == nil {
		cfg.Palette = def.Palette
	}
	if cfg.Policy.Threshold <= 0 {
		cfg.Policy = def.Policy
	}
	if len(cfg.Periods) == 0 {
		cfg.Periods = def.Periods
	}
	if cfg.Fallback == "" {
		cfg.Fallback = def.Fallback
	}
	if cfg.MinPlayerGames <= 0 {
		cfg.MinPlayerGames = def.MinPlayerGames
	}
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Common is the part of every view model describing the selectors.
type Common struct {
	Page        Page            `json:"page"`
	Request     Request         `json:"request"`
	Version     uint64          `json:"version"`
	PeriodLabel string          `json:"period_label"`
	Periods     []period.Key    `json:"periods"`
	Factions    []faction.Badge `json:"factions"`
}

// Base returns the common section.
func (c Common) Base() Common { return c }

// Model is a rendered page.
type Model interface {
	Base() Common
}

// Table is implemented by models with exportable rows.
type Table interface {
	Model
	TableRows() any
}

// Render dispatches req to its page renderer.
func (e *Engine) Render(snap *dataset.Snapshot, req Request) (Model, error) {
	switch req.Page {
	case PageHome:
		return e.Home(snap, req), nil
	case PageCommanders:
		return e.Commanders(snap, req), nil
	case PageCards:
		return e.Cards(snap, req), nil
	case PageMeta:
		return e.Meta(snap, req), nil
	case PageMulligan:
		return e.Mulligan(snap, req), nil
	case PageDuration, PageActions, PageTurns:
		return e.Buckets(snap, req), nil
	case PagePlayers:
		return e.Players(snap, req), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, req.Page)
	}
}

// SelectSort applies a column header click to req using the page's sort
// rules.
func (e *Engine) SelectSort(snap *dataset.Snapshot, req Request, key string) Request {
	switch req.Page {
	case PageCommanders:
		return req.WithSort(e.commanderSchema().Select(req.Sort, key))
	case PageCards:
		return req.WithSort(e.cardSchema().Select(req.Sort, key))
	case PageMulligan:
		return req.WithSort(e.mulliganSchema().Select(req.Sort, key))
	case PagePlayers:
		return req.WithSort(e.playerSchema().Select(req.Sort, key))
	case PageDuration, PageActions, PageTurns:
		series, _ := period.Resolve(bucketDataset(snap, req.Page), req.Period, e.cfg.Fallback)
		return req.WithSort(bucket.Select(req.Sort, key, len(series.Buckets)))
	default:
		return req
	}
}

func (e *Engine) common(snap *dataset.Snapshot, req Request) Common {
	badges := []faction.Badge{{Key: filter.All, Label: "All Factions"}}
	for _, f := range e.cfg.Palette.Members() {
		badges = append(badges, e.cfg.Palette.Badge(f.Key()))
	}
	var version uint64
	if snap != nil {
		version = snap.Version
	}
	return Common{
		Page:        req.Page,
		Request:     req,
		Version:     version,
		PeriodLabel: e.cfg.Periods.Label(e.periodID(req.Period)),
		Periods:     e.cfg.Periods,
		Factions:    badges,
	}
}

// periodID is the key a request's period resolves to for labelling.
func (e *Engine) periodID(p string) string {
	if e.cfg.Periods.Has(p) {
		return p
	}
	return e.cfg.Fallback
}

func resolve[T any](e *Engine, ds *period.Dataset[T], req Request) T {
	v, _ := period.Resolve(ds, req.Period, e.cfg.Fallback)
	return v
}

func bucketDataset(snap *dataset.Snapshot, p Page) *period.Dataset[models.BucketSeries] {
	snap = orEmpty(snap)
	switch p {
	case PageDuration:
		return snap.DurationWinrates
	case PageActions:
		return snap.ActionWinrates
	case PageTurns:
		return snap.TurnWinrates
	}
	return nil
}

func orEmpty(snap *dataset.Snapshot) *dataset.Snapshot {
	if snap == nil {
		return &dataset.Snapshot{}
	}
	return snap
}
