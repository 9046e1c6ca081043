// Package counters maintains the denormalized engagement counters. All
// mutations are relative SQL expressions executed inside the caller's
// transaction, so a counter update commits or rolls back together with the
// row change that triggered it.
package counters

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gitforum/internal/middleware"
	"gitforum/internal/models"
	"gitforum/internal/observability"

	"gorm.io/gorm"
)

// counterColumns is the closed set of columns the engine will touch.
var counterColumns = map[string]bool{
	"views":           true,
	"likes_count":     true,
	"comments_count":  true,
	"bookmarks_count": true,
	"forks_count":     true,
	"followers_count": true,
	"following_count": true,
	"posts_count":     true,
	"usage_count":     true,
}

// Engine applies relative counter updates and reconciles drift.
type Engine struct {
	db *gorm.DB
}

// NewEngine creates a counter engine bound to the given database handle.
// The handle is only used by Reconcile; Increment and Decrement always run
// on the transaction the caller passes in.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

func entityLabel(model interface{}) string {
	label := fmt.Sprintf("%T", model)
	if i := strings.LastIndex(label, "."); i >= 0 {
		label = label[i+1:]
	}
	return strings.ToLower(label)
}

// Increment adjusts column on the identified row by delta using a relative
// expression, never a read-modify-write. A zero delta is a no-op.
func (e *Engine) Increment(tx *gorm.DB, model interface{}, id uint, column string, delta int) error {
	if delta == 0 {
		return nil
	}
	if !counterColumns[column] {
		return models.NewValidationError(fmt.Sprintf("unknown counter column %q", column))
	}

	res := tx.Model(model).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	return nil
}

// Decrement decreases column on the identified row by one, guarded so the
// stored value can never go below zero. A decrement that finds the counter
// already at zero is recorded as drift and otherwise ignored.
func (e *Engine) Decrement(tx *gorm.DB, model interface{}, id uint, column string) error {
	if !counterColumns[column] {
		return models.NewValidationError(fmt.Sprintf("unknown counter column %q", column))
	}

	res := tx.Model(model).Where("id = ? AND "+column+" > 0", id).
		UpdateColumn(column, gorm.Expr(column+" - 1"))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		entity := entityLabel(model)
		observability.CounterDesyncs.WithLabelValues(entity, column).Inc()
		middleware.Logger.Warn("counter decrement clamped at zero",
			slog.String("entity", entity),
			slog.String("column", column),
			slog.Uint64("id", uint64(id)),
		)
	}
	return nil
}

// reconcileSpec ties a stored counter column to the SQL expression that
// computes its true value from relationship rows.
type reconcileSpec struct {
	entity string
	table  string
	column string
	actual string
	filter string
}

// forks_count has no backing relation table, so it cannot be recomputed
// and is deliberately absent here.
var reconcileSpecs = []reconcileSpec{
	{
		entity: "post", table: "posts", column: "likes_count",
		actual: "(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id)",
		filter: "posts.deleted_at IS NULL",
	},
	{
		entity: "post", table: "posts", column: "comments_count",
		actual: "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL)",
		filter: "posts.deleted_at IS NULL",
	},
	{
		entity: "post", table: "posts", column: "bookmarks_count",
		actual: "(SELECT COUNT(*) FROM bookmarks WHERE bookmarks.post_id = posts.id)",
		filter: "posts.deleted_at IS NULL",
	},
	{
		entity: "post", table: "posts", column: "views",
		actual: "(SELECT COUNT(*) FROM post_views WHERE post_views.post_id = posts.id)",
		filter: "posts.deleted_at IS NULL",
	},
	{
		entity: "user", table: "users", column: "followers_count",
		actual: "(SELECT COUNT(*) FROM follows WHERE follows.following_id = users.id)",
		filter: "users.deleted_at IS NULL",
	},
	{
		entity: "user", table: "users", column: "following_count",
		actual: "(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id)",
		filter: "users.deleted_at IS NULL",
	},
	{
		entity: "user", table: "users", column: "posts_count",
		actual: "(SELECT COUNT(*) FROM posts WHERE posts.author_id = users.id AND posts.deleted_at IS NULL)",
		filter: "users.deleted_at IS NULL",
	},
	{
		entity: "tag", table: "tags", column: "usage_count",
		actual: "(SELECT COUNT(*) FROM post_tags WHERE post_tags.tag_id = tags.id)",
	},
}

// Correction records one repaired counter.
type Correction struct {
	Entity string `json:"entity"`
	ID     uint   `json:"id"`
	Field  string `json:"field"`
	Stored int    `json:"stored"`
	Actual int    `json:"actual"`
}

// Report summarizes a reconciliation run. Checked counts the counter
// fields examined, one per reconcilable column, not table rows.
type Report struct {
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Checked     int          `json:"checked"`
	Corrections []Correction `json:"corrections"`
}

// Reconcile recomputes every reconcilable counter from its relationship
// rows and overwrites stored values that drifted. It is idempotent: a second
// run immediately after a clean one reports zero corrections.
func (e *Engine) Reconcile(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: time.Now()}

	for _, spec := range reconcileSpecs {
		drifted, err := e.findDrift(ctx, spec)
		if err != nil {
			return nil, err
		}
		report.Checked++

		for _, d := range drifted {
			fixSQL := fmt.Sprintf(
				"UPDATE %s SET %s = %s WHERE id = ?",
				spec.table, spec.column, spec.actual,
			)
			if err := e.db.WithContext(ctx).Exec(fixSQL, d.ID).Error; err != nil {
				return nil, models.NewInternalError(
					fmt.Errorf("repair %s.%s: %w", spec.table, spec.column, err))
			}
			observability.ReconcileCorrections.WithLabelValues(spec.entity, spec.column).Inc()
			middleware.Logger.Warn("counter drift repaired",
				slog.String("entity", spec.entity),
				slog.String("field", spec.column),
				slog.Uint64("id", uint64(d.ID)),
				slog.Int("stored", d.Stored),
				slog.Int("actual", d.Actual),
			)
			report.Corrections = append(report.Corrections, d)
		}
	}

	report.FinishedAt = time.Now()
	return report, nil
}

func (e *Engine) findDrift(ctx context.Context, spec reconcileSpec) ([]Correction, error) {
	query := fmt.Sprintf(
		"SELECT id, %s AS stored, %s AS actual FROM %s WHERE %s <> %s",
		spec.column, spec.actual, spec.table, spec.column, spec.actual,
	)
	if spec.filter != "" {
		query += " AND " + spec.filter
	}

	var rows []struct {
		ID     uint
		Stored int
		Actual int
	}
	if err := e.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(
			fmt.Errorf("scan %s.%s for drift: %w", spec.table, spec.column, err))
	}

	drifted := make([]Correction, 0, len(rows))
	for _, row := range rows {
		drifted = append(drifted, Correction{
			Entity: spec.entity,
			ID:     row.ID,
			Field:  spec.column,
			Stored: row.Stored,
			Actual: row.Actual,
		})
	}
	return drifted, nil
}
