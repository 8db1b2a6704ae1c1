package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RossFW/atlas-conquest/internal/analytics/view"
)

var (
	// ErrViewNotFound is returned when no saved view has the given id.
	ErrViewNotFound = errors.New("saved view not found")
	// ErrDuplicateName is returned when a saved view name is already taken.
	ErrDuplicateName = errors.New("saved view name already exists")
	// ErrEmptyName is returned for a blank saved view name.
	ErrEmptyName = errors.New("saved view name is required")
)

const timeLayout = "2006-01-02 15:04:05.999999"

// SavedView is a named selector state.
type SavedView struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Request    view.Request `json:"request"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	LastUsedAt *time.Time   `json:"last_used_at,omitempty"`
	UseCount   int          `json:"use_count"`
}

// SavedViewRepository handles database operations for saved views.
type SavedViewRepository interface {
	// Create stores a new view, assigning its ID and timestamps.
	Create(ctx context.Context, name string, req view.Request) (*SavedView, error)

	// Get retrieves a view by ID.
	Get(ctx context.Context, id string) (*SavedView, error)

	// List retrieves all views, optionally only those for one page, by name.
	List(ctx context.Context, page view.Page) ([]*SavedView, error)

	// Update replaces the request of an existing view.
	Update(ctx context.Context, id string, req view.Request) (*SavedView, error)

	// Use records that a view was applied and returns it.
	Use(ctx context.Context, id string) (*SavedView, error)

	// Delete removes a view.
	Delete(ctx context.Context, id string) error
}

type savedViewRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSavedViewRepository creates a new saved view repository.
func NewSavedViewRepository(db *sql.DB) SavedViewRepository {
	return &savedViewRepository{db: db, now: time.Now}
}

func (r *savedViewRepository) Create(ctx context.Context, name string, req view.Request) (*SavedView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if _, err := view.ParsePage(string(req.Page)); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	now := r.now().UTC()
	sv := &SavedView{
		ID:        uuid.NewString(),
		Name:      name,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO saved_views (id, name, page, request, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		sv.ID, sv.Name, string(req.Page), string(payload),
		now.Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		return nil, fmt.Errorf("failed to create saved view: %w", err)
	}

	return sv, nil
}

func (r *savedViewRepository) Get(ctx context.Context, id string) (*SavedView, error) {
	query := `
		SELECT id, name, request, created_at, updated_at, last_used_at, use_count
		FROM saved_views
		WHERE id = ?
	`
	sv, err := scanSavedView(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saved view: %w", err)
	}
	return sv, nil
}

func (r *savedViewRepository) List(ctx context.Context, page view.Page) ([]*SavedView, error) {
	query := `
		SELECT id, name, request, created_at, updated_at, last_used_at, use_count
		FROM saved_views
	`
	var args []any
	if page != "" {
		query += " WHERE page = ?"
		args = append(args, string(page))
	}
	query += " ORDER BY name COLLATE NOCASE"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved views: %w", err)
	}
	defer rows.Close()

	var views []*SavedView
	for rows.Next() {
		sv, err := scanSavedView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved view: %w", err)
		}
		views = append(views, sv)
	}
	return views, rows.Err()
}

func (r *savedViewRepository) Update(ctx context.Context, id string, req view.Request) (*SavedView, error) {
	if _, err := view.ParsePage(string(req.Page)); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	query := `
		UPDATE saved_views
		SET page = ?, request = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query, string(req.Page), string(payload), r.now().UTC().Format(timeLayout), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update saved view: %w", err)
	}
	if err := requireAffected(res, id); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *savedViewRepository) Use(ctx context.Context, id string) (*SavedView, error) {
	query := `
		UPDATE saved_views
		SET use_count = use_count + 1, last_used_at = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query, r.now().UTC().Format(timeLayout), id)
	if err != nil {
		return nil, fmt.Errorf("failed to record saved view use: %w", err)
	}
	if err := requireAffected(res, id); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *savedViewRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_views WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete saved view: %w", err)
	}
	return requireAffected(res, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSavedView(s scanner) (*SavedView, error) {
	var (
		sv                   SavedView
		payload              string
		createdAt, updatedAt string
		lastUsedAt           sql.NullString
	)
	if err := s.Scan(&sv.ID, &sv.Name, &payload, &createdAt, &updatedAt, &lastUsedAt, &sv.UseCount); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(payload), &sv.Request); err != nil {
		return nil, fmt.Errorf("decode request of %s: %w", sv.ID, err)
	}

	var err error
	if sv.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if sv.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if lastUsedAt.Valid {
		t, err := time.Parse(timeLayout, lastUsedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_used_at: %w", err)
		}
		sv.LastUsedAt = &t
	}
	return &sv, nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
