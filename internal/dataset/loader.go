package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/RossFW/atlas-conquest/internal/analytics/period"
	"github.com/RossFW/atlas-conquest/internal/models"
)

// Resource file names inside the data directory.
const (
	FileMetadata               = "metadata.json"
	FileCommanderStats         = "commander_stats.json"
	FileCardStats              = "card_stats.json"
	FileTrends                 = "trends.json"
	FileMatchups               = "matchups.json"
	FileMulliganStats          = "mulligan_stats.json"
	FileCommanderMulliganStats = "commander_mulligan_stats.json"
	FileDurationWinrates       = "duration_winrates.json"
	FileActionWinrates         = "action_winrates.json"
	FileTurnWinrates           = "turn_winrates.json"
	FilePlayers                = "players.json"
	FileCommanders             = "commanders.json"
	FileDeckComposition        = "deck_composition.json"
	FileGameDistributions      = "game_distributions.json"
)

// Loader reads resources from a directory. Each resource loads
// independently: a missing or malformed file leaves that resource nil.
type Loader struct {
	fsys   fs.FS
	keys   period.Keys
	logger *slog.Logger
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	// Periods are the keys recognized when detecting partitioned files.
	Periods period.Keys
	Logger  *slog.Logger
}

// NewLoader creates a loader reading from dir.
func NewLoader(dir string, cfg LoaderConfig) *Loader {
	return NewFSLoader(os.DirFS(dir), cfg)
}

// NewFSLoader creates a loader reading from fsys.
func NewFSLoader(fsys fs.FS, cfg LoaderConfig) *Loader {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if len(cfg.Periods) == 0 {
		cfg.Periods = period.DefaultKeys()
	}
	return &Loader{fsys: fsys, keys: cfg.Periods, logger: cfg.Logger}
}

// Load reads every resource into a new snapshot. It only fails when the
// data directory itself cannot be read or ctx is done.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	if _, err := fs.ReadDir(l.fsys, "."); err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	snap := &Snapshot{LoadedAt: time.Now()}
	steps := []func(){
		func() { snap.Metadata = load[models.Metadata](l, FileMetadata) },
		func() { snap.CommanderStats = load[[]models.CommanderStat](l, FileCommanderStats) },
		func() { snap.CardStats = load[[]models.CardStat](l, FileCardStats) },
		func() { snap.Trends = load[models.Trends](l, FileTrends) },
		func() { snap.Matchups = load[models.Matchups](l, FileMatchups) },
		func() { snap.MulliganStats = load[[]models.MulliganStat](l, FileMulliganStats) },
		func() { snap.CommanderMulliganStats = load[map[string][]models.MulliganStat](l, FileCommanderMulliganStats) },
		func() { snap.DurationWinrates = load[models.BucketSeries](l, FileDurationWinrates) },
		func() { snap.ActionWinrates = load[models.BucketSeries](l, FileActionWinrates) },
		func() { snap.TurnWinrates = load[models.BucketSeries](l, FileTurnWinrates) },
		func() { snap.Players = load[[]models.PlayerStat](l, FilePlayers) },
		func() { snap.Commanders = load[[]models.CommanderInfo](l, FileCommanders) },
		func() { snap.DeckComposition = load[map[string]models.DeckComposition](l, FileDeckComposition) },
		func() { snap.Distributions = load[models.GameDistributions](l, FileGameDistributions) },
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step()
	}
	return snap, nil
}

func load[T any](l *Loader, name string) *period.Dataset[T] {
	raw, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("dataset missing", "file", name)
		} else {
			l.logger.Warn("dataset unreadable", "file", name, "error", err)
		}
		return nil
	}

	ds, err := period.Decode[T](raw, l.keys)
	if err != nil {
		l.logger.Warn("dataset malformed", "file", name, "error", err)
		return nil
	}
	l.logger.Debug("dataset loaded", "file", name, "partitioned", ds.IsPartitioned())
	return ds
}
