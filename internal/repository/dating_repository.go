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

// DatingRepository persists couple dating events and their patterns.
type DatingRepository struct {
	db *sqlx.DB
}

// NewDatingRepository creates a new dating repository.
func NewDatingRepository(db *sqlx.DB) *DatingRepository {
	return &DatingRepository{db: db}
}

const datingPatternInsert = `INSERT INTO recurrence_patterns (id, owner_id, repeat_start_date, repeat_end_date, repeat_rule, category, created_at, updated_at)
VALUES (:id, :owner_id, :repeat_start_date, :repeat_end_date, :repeat_rule, :category, :created_at, :updated_at)`

const datingInsert = `INSERT INTO datings (id, pattern_id, couple_id, title, content, location, start_at, end_at, created_at, updated_at)
VALUES (:id, :pattern_id, :couple_id, :title, :content, :location, :start_at, :end_at, :created_at, :updated_at)`

const datingColumns = `id, pattern_id, couple_id, title, content, location, start_at, end_at, created_at, updated_at`

// CreateBatch inserts the pattern and its full occurrence batch atomically.
func (r *DatingRepository) CreateBatch(ctx context.Context, pattern *models.RecurrencePattern, items []models.Dating) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin dating batch: %w", err)
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
	if _, err = tx.NamedExecContext(ctx, datingPatternInsert, pattern); err != nil {
		return fmt.Errorf("insert dating pattern: %w", err)
	}

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		items[i].PatternID = pattern.ID
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, datingInsert, &items[i]); err != nil {
			return fmt.Errorf("insert dating occurrence: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit dating batch: %w", err)
	}
	return nil
}

// FindByID loads a dating occurrence by id.
func (r *DatingRepository) FindByID(ctx context.Context, id string) (*models.Dating, error) {
	query := fmt.Sprintf("SELECT %s FROM datings WHERE id = $1", datingColumns)
	var item models.Dating
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindPattern loads the owning recurrence pattern.
func (r *DatingRepository) FindPattern(ctx context.Context, patternID string) (*models.RecurrencePattern, error) {
	const query = `SELECT id, owner_id, repeat_start_date, repeat_end_date, repeat_rule, category, created_at, updated_at
FROM recurrence_patterns WHERE id = $1`
	var pattern models.RecurrencePattern
	if err := r.db.GetContext(ctx, &pattern, query, patternID); err != nil {
		return nil, err
	}
	return &pattern, nil
}

// CountByPattern counts the occurrences still attached to a pattern.
func (r *DatingRepository) CountByPattern(ctx context.Context, patternID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM datings WHERE pattern_id = $1", patternID); err != nil {
		return 0, fmt.Errorf("count dating occurrences: %w", err)
	}
	return count, nil
}

// ListByPattern returns every occurrence of a pattern ordered by start.
func (r *DatingRepository) ListByPattern(ctx context.Context, patternID string) ([]models.Dating, error) {
	query := fmt.Sprintf("SELECT %s FROM datings WHERE pattern_id = $1 ORDER BY start_at ASC", datingColumns)
	var items []models.Dating
	if err := r.db.SelectContext(ctx, &items, query, patternID); err != nil {
		return nil, fmt.Errorf("list dating occurrences: %w", err)
	}
	return items, nil
}

// UpdateInPlace mutates a sole occurrence together with its pattern bounds.
func (r *DatingRepository) UpdateInPlace(ctx context.Context, item *models.Dating, pattern *models.RecurrencePattern) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin dating update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	item.UpdatedAt = now
	const updateQuery = `UPDATE datings SET title = :title, content = :content, location = :location,
start_at = :start_at, end_at = :end_at, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, updateQuery, item); err != nil {
		return fmt.Errorf("update dating occurrence: %w", err)
	}

	if pattern != nil {
		pattern.UpdatedAt = now
		const patternQuery = `UPDATE recurrence_patterns SET repeat_start_date = :repeat_start_date,
repeat_end_date = :repeat_end_date, updated_at = :updated_at WHERE id = :id`
		if _, err = tx.NamedExecContext(ctx, patternQuery, pattern); err != nil {
			return fmt.Errorf("update dating pattern: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit dating update: %w", err)
	}
	return nil
}

// Split re-parents one occurrence onto a fresh single-day pattern, applies
// its field changes, and optionally tightens the original pattern's bounds.
func (r *DatingRepository) Split(ctx context.Context, oldPatternID string, item *models.Dating, newPattern *models.RecurrencePattern, bounds *PatternBounds) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin dating split: %w", err)
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
	if _, err = tx.NamedExecContext(ctx, datingPatternInsert, newPattern); err != nil {
		return fmt.Errorf("insert split pattern: %w", err)
	}

	item.PatternID = newPattern.ID
	item.UpdatedAt = now
	const reparentQuery = `UPDATE datings SET pattern_id = :pattern_id, title = :title, content = :content,
location = :location, start_at = :start_at, end_at = :end_at, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, reparentQuery, item); err != nil {
		return fmt.Errorf("reparent dating occurrence: %w", err)
	}

	if bounds != nil {
		const boundsQuery = `UPDATE recurrence_patterns SET repeat_start_date = $1, repeat_end_date = $2, updated_at = $3 WHERE id = $4`
		if _, err = tx.ExecContext(ctx, boundsQuery, bounds.Start, bounds.End, now, oldPatternID); err != nil {
			return fmt.Errorf("tighten dating pattern bounds: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit dating split: %w", err)
	}
	return nil
}

// ShiftSeries applies a series edit as one bulk statement plus the pattern
// date shift, atomically.
func (r *DatingRepository) ShiftSeries(ctx context.Context, shift SeriesShift) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin dating series shift: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const bulkQuery = `UPDATE datings SET
start_at = start_at + make_interval(mins => $1),
end_at = end_at + make_interval(mins => $2),
title = $3, content = $4, location = $5, updated_at = $6
WHERE pattern_id = $7`
	if _, err = tx.ExecContext(ctx, bulkQuery, shift.StartDeltaMin, shift.EndDeltaMin,
		shift.Title, shift.Content, shift.Location, now, shift.PatternID); err != nil {
		return fmt.Errorf("shift dating series: %w", err)
	}

	if shift.ShiftPattern {
		query := `UPDATE recurrence_patterns SET repeat_start_date = repeat_start_date + $1, updated_at = $2 WHERE id = $3`
		if shift.ShiftPatternEnd {
			query = `UPDATE recurrence_patterns SET repeat_start_date = repeat_start_date + $1,
repeat_end_date = repeat_end_date + $1, updated_at = $2 WHERE id = $3`
		}
		if _, err = tx.ExecContext(ctx, query, shift.PatternDayDiff, now, shift.PatternID); err != nil {
			return fmt.Errorf("shift dating pattern dates: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit dating series shift: %w", err)
	}
	return nil
}

// DeleteOne removes an occurrence and cascades the pattern once empty.
func (r *DatingRepository) DeleteOne(ctx context.Context, id, patternID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin dating delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM datings WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete dating occurrence: %w", err)
	}
	const cascadeQuery = `DELETE FROM recurrence_patterns
WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM datings WHERE pattern_id = $1)`
	if _, err = tx.ExecContext(ctx, cascadeQuery, patternID); err != nil {
		return fmt.Errorf("cascade dating pattern: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit dating delete: %w", err)
	}
	return nil
}

// DeleteSeries removes every occurrence of a pattern, then the pattern.
func (r *DatingRepository) DeleteSeries(ctx context.Context, patternID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin dating series delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM datings WHERE pattern_id = $1", patternID); err != nil {
		return fmt.Errorf("delete dating series: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM recurrence_patterns WHERE id = $1", patternID); err != nil {
		return fmt.Errorf("delete dating pattern: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit dating series delete: %w", err)
	}
	return nil
}

// ListInRange returns the couple's occurrences overlapping the optional
// year/month window, ordered by start.
func (r *DatingRepository) ListInRange(ctx context.Context, coupleID string, year, month *int) ([]models.Dating, error) {
	where := []string{"couple_id = $1"}
	args := []interface{}{coupleID}

	if year != nil {
		from := time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		if month != nil {
			from = time.Date(*year, time.Month(*month), 1, 0, 0, 0, 0, time.UTC)
			to = from.AddDate(0, 1, 0)
		}
		where = append(where, fmt.Sprintf("end_at >= $%d", len(args)+1))
		args = append(args, from)
		where = append(where, fmt.Sprintf("start_at < $%d", len(args)+1))
		args = append(args, to)
	} else if month != nil {
		n := len(args) + 1
		where = append(where, fmt.Sprintf(monthCoversPredicate, n, n, n))
		args = append(args, *month)
	}

	query := fmt.Sprintf("SELECT %s FROM datings WHERE %s ORDER BY start_at ASC", datingColumns, strings.Join(where, " AND "))
	var items []models.Dating
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list datings in range: %w", err)
	}
	return items, nil
}
