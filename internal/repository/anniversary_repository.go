package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/duetday/duetday-api/internal/models"
)

// AnniversarySeriesShift describes a bulk anniversary series edit. The
// occurrences are date-only, so the shift is expressed in whole days.
type AnniversarySeriesShift struct {
	PatternID       string
	DayDiff         int
	Title           string
	Content         *string
	ShiftPattern    bool
	ShiftPatternEnd bool
}

// AnniversaryRepository persists couple anniversaries and their patterns.
type AnniversaryRepository struct {
	db *sqlx.DB
}

// NewAnniversaryRepository creates a new anniversary repository.
func NewAnniversaryRepository(db *sqlx.DB) *AnniversaryRepository {
	return &AnniversaryRepository{db: db}
}

const anniversaryPatternInsert = `INSERT INTO recurrence_patterns (id, owner_id, repeat_start_date, repeat_end_date, repeat_rule, category, created_at, updated_at)
VALUES (:id, :owner_id, :repeat_start_date, :repeat_end_date, :repeat_rule, :category, :created_at, :updated_at)`

const anniversaryInsert = `INSERT INTO anniversaries (id, pattern_id, couple_id, title, content, category, date, created_at, updated_at)
VALUES (:id, :pattern_id, :couple_id, :title, :content, :category, :date, :created_at, :updated_at)`

const anniversaryColumns = `id, pattern_id, couple_id, title, content, category, date, created_at, updated_at`

// CreateBatch inserts the pattern and its full occurrence batch atomically.
func (r *AnniversaryRepository) CreateBatch(ctx context.Context, pattern *models.RecurrencePattern, items []models.Anniversary) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin anniversary batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if pattern.ID == "" {
		pattern.ID = uuid.NewString()
	}
	pattern.CreatedAt = now
	pattern.UpdatedAt = now
	if _, err = tx.NamedExecContext(ctx, anniversaryPatternInsert, pattern); err != nil {
		return fmt.Errorf("insert anniversary pattern: %w", err)
	}

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		items[i].PatternID = pattern.ID
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, anniversaryInsert, &items[i]); err != nil {
			return fmt.Errorf("insert anniversary occurrence: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit anniversary batch: %w", err)
	}
	return nil
}

// FindByID loads an anniversary occurrence by id.
func (r *AnniversaryRepository) FindByID(ctx context.Context, id string) (*models.Anniversary, error) {
	query := fmt.Sprintf("SELECT %s FROM anniversaries WHERE id = $1", anniversaryColumns)
	var item models.Anniversary
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindPattern loads the owning recurrence pattern.
func (r *AnniversaryRepository) FindPattern(ctx context.Context, patternID string) (*models.RecurrencePattern, error) {
	const query = `SELECT id, owner_id, repeat_start_date, repeat_end_date, repeat_rule, category, created_at, updated_at
FROM recurrence_patterns WHERE id = $1`
	var pattern models.RecurrencePattern
	if err := r.db.GetContext(ctx, &pattern, query, patternID); err != nil {
		return nil, err
	}
	return &pattern, nil
}

// CountByPattern counts the occurrences still attached to a pattern.
func (r *AnniversaryRepository) CountByPattern(ctx context.Context, patternID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM anniversaries WHERE pattern_id = $1", patternID); err != nil {
		return 0, fmt.Errorf("count anniversary occurrences: %w", err)
	}
	return count, nil
}

// ListByPattern returns every occurrence of a pattern ordered by date.
func (r *AnniversaryRepository) ListByPattern(ctx context.Context, patternID string) ([]models.Anniversary, error) {
	query := fmt.Sprintf("SELECT %s FROM anniversaries WHERE pattern_id = $1 ORDER BY date ASC", anniversaryColumns)
	var items []models.Anniversary
	if err := r.db.SelectContext(ctx, &items, query, patternID); err != nil {
		return nil, fmt.Errorf("list anniversary occurrences: %w", err)
	}
	return items, nil
}

// UpdateInPlace mutates a sole occurrence together with its pattern bounds.
func (r *AnniversaryRepository) UpdateInPlace(ctx context.Context, item *models.Anniversary, pattern *models.RecurrencePattern) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin anniversary update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	item.UpdatedAt = now
	const updateQuery = `UPDATE anniversaries SET title = :title, content = :content, date = :date, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, updateQuery, item); err != nil {
		return fmt.Errorf("update anniversary occurrence: %w", err)
	}

	if pattern != nil {
		pattern.UpdatedAt = now
		const patternQuery = `UPDATE recurrence_patterns SET repeat_start_date = :repeat_start_date,
repeat_end_date = :repeat_end_date, updated_at = :updated_at WHERE id = :id`
		if _, err = tx.NamedExecContext(ctx, patternQuery, pattern); err != nil {
			return fmt.Errorf("update anniversary pattern: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit anniversary update: %w", err)
	}
	return nil
}

// Split re-parents one occurrence onto a fresh single-day pattern, applies
// its field changes, and optionally tightens the original pattern's bounds.
func (r *AnniversaryRepository) Split(ctx context.Context, oldPatternID string, item *models.Anniversary, newPattern *models.RecurrencePattern, bounds *PatternBounds) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin anniversary split: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if newPattern.ID == "" {
		newPattern.ID = uuid.NewString()
	}
	newPattern.CreatedAt = now
	newPattern.UpdatedAt = now
	if _, err = tx.NamedExecContext(ctx, anniversaryPatternInsert, newPattern); err != nil {
		return fmt.Errorf("insert split pattern: %w", err)
	}

	item.PatternID = newPattern.ID
	item.UpdatedAt = now
	const reparentQuery = `UPDATE anniversaries SET pattern_id = :pattern_id, title = :title, content = :content,
date = :date, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, reparentQuery, item); err != nil {
		return fmt.Errorf("reparent anniversary occurrence: %w", err)
	}

	if bounds != nil {
		const boundsQuery = `UPDATE recurrence_patterns SET repeat_start_date = $1, repeat_end_date = $2, updated_at = $3 WHERE id = $4`
		if _, err = tx.ExecContext(ctx, boundsQuery, bounds.Start, bounds.End, now, oldPatternID); err != nil {
			return fmt.Errorf("tighten anniversary pattern bounds: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit anniversary split: %w", err)
	}
	return nil
}

// ShiftSeries applies a series edit as one bulk statement plus the pattern
// date shift, atomically.
func (r *AnniversaryRepository) ShiftSeries(ctx context.Context, shift AnniversarySeriesShift) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin anniversary series shift: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const bulkQuery = `UPDATE anniversaries SET
date = date + $1,
title = $2, content = $3, updated_at = $4
WHERE pattern_id = $5`
	if _, err = tx.ExecContext(ctx, bulkQuery, shift.DayDiff, shift.Title, shift.Content, now, shift.PatternID); err != nil {
		return fmt.Errorf("shift anniversary series: %w", err)
	}

	if shift.ShiftPattern {
		query := `UPDATE recurrence_patterns SET repeat_start_date = repeat_start_date + $1, updated_at = $2 WHERE id = $3`
		if shift.ShiftPatternEnd {
			query = `UPDATE recurrence_patterns SET repeat_start_date = repeat_start_date + $1,
repeat_end_date = repeat_end_date + $1, updated_at = $2 WHERE id = $3`
		}
		if _, err = tx.ExecContext(ctx, query, shift.DayDiff, now, shift.PatternID); err != nil {
			return fmt.Errorf("shift anniversary pattern dates: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit anniversary series shift: %w", err)
	}
	return nil
}

// DeleteOne removes an occurrence and cascades the pattern once empty.
func (r *AnniversaryRepository) DeleteOne(ctx context.Context, id, patternID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin anniversary delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM anniversaries WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete anniversary occurrence: %w", err)
	}
	const cascadeQuery = `DELETE FROM recurrence_patterns
WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM anniversaries WHERE pattern_id = $1)`
	if _, err = tx.ExecContext(ctx, cascadeQuery, patternID); err != nil {
		return fmt.Errorf("cascade anniversary pattern: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit anniversary delete: %w", err)
	}
	return nil
}

// DeleteSeries removes every occurrence of a pattern, then the pattern.
func (r *AnniversaryRepository) DeleteSeries(ctx context.Context, patternID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin anniversary series delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM anniversaries WHERE pattern_id = $1", patternID); err != nil {
		return fmt.Errorf("delete anniversary series: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM recurrence_patterns WHERE id = $1", patternID); err != nil {
		return fmt.Errorf("delete anniversary pattern: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit anniversary series delete: %w", err)
	}
	return nil
}

// ListInRange returns the couple's anniversaries matching the optional
// year/month filter, ordered by date.
func (r *AnniversaryRepository) ListInRange(ctx context.Context, coupleID string, year, month *int) ([]models.Anniversary, error) {
	where := []string{"couple_id = $1"}
	args := []interface{}{coupleID}

	if year != nil {
		where = append(where, fmt.Sprintf("EXTRACT(YEAR FROM date) = $%d", len(args)+1))
		args = append(args, *year)
	}
	if month != nil {
		where = append(where, fmt.Sprintf("EXTRACT(MONTH FROM date) = $%d", len(args)+1))
		args = append(args, *month)
	}

	query := fmt.Sprintf("SELECT %s FROM anniversaries WHERE %s ORDER BY date ASC", anniversaryColumns, strings.Join(where, " AND "))
	var items []models.Anniversary
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list anniversaries in range: %w", err)
	}
	return items, nil
}
