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

// PatternBounds carries recomputed repeat boundary dates for a pattern whose
// boundary occurrence was edited away.
type PatternBounds struct {
	Start time.Time
	End   time.Time
}

// SeriesShift describes a bulk series edit: every occurrence of the pattern
// moves by the literal minute deltas and receives the same field values.
type SeriesShift struct {
	PatternID       string
	StartDeltaMin   int64
	EndDeltaMin     int64
	Title           string
	Content         *string
	Location        *string
	PatternDayDiff  int
	ShiftPattern    bool
	ShiftPatternEnd bool
}

// ScheduleRepository persists member schedules and their recurrence patterns.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const schedulePatternInsert = `INSERT INTO recurrence_patterns (id, owner_id, repeat_start_date, repeat_end_date, repeat_rule, category, created_at, updated_at)
VALUES (:id, :owner_id, :repeat_start_date, :repeat_end_date, :repeat_rule, :category, :created_at, :updated_at)`

const scheduleInsert = `INSERT INTO schedules (id, pattern_id, member_id, title, content, location, start_at, end_at, created_at, updated_at)
VALUES (:id, :pattern_id, :member_id, :title, :content, :location, :start_at, :end_at, :created_at, :updated_at)`

const scheduleColumns = `id, pattern_id, member_id, title, content, location, start_at, end_at, created_at, updated_at`

// CreateBatch inserts the pattern and its full occurrence batch atomically.
func (r *ScheduleRepository) CreateBatch(ctx context.Context, pattern *models.RecurrencePattern, items []models.Schedule) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin schedule batch: %w", err)
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
	if _, err = tx.NamedExecContext(ctx, schedulePatternInsert, pattern); err != nil {
		return fmt.Errorf("insert schedule pattern: %w", err)
	}

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		items[i].PatternID = pattern.ID
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, scheduleInsert, &items[i]); err != nil {
			return fmt.Errorf("insert schedule occurrence: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule batch: %w", err)
	}
	return nil
}

// FindByID loads a schedule occurrence by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE id = $1", scheduleColumns)
	var item models.Schedule
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindPattern loads the owning recurrence pattern.
func (r *ScheduleRepository) FindPattern(ctx context.Context, patternID string) (*models.RecurrencePattern, error) {
	const query = `SELECT id, owner_id, repeat_start_date, repeat_end_date, repeat_rule, category, created_at, updated_at
FROM recurrence_patterns WHERE id = $1`
	var pattern models.RecurrencePattern
	if err := r.db.GetContext(ctx, &pattern, query, patternID); err != nil {
		return nil, err
	}
	return &pattern, nil
}

// CountByPattern counts the occurrences still attached to a pattern.
func (r *ScheduleRepository) CountByPattern(ctx context.Context, patternID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM schedules WHERE pattern_id = $1", patternID); err != nil {
		return 0, fmt.Errorf("count schedule occurrences: %w", err)
	}
	return count, nil
}

// ListByPattern returns every occurrence of a pattern ordered by start.
func (r *ScheduleRepository) ListByPattern(ctx context.Context, patternID string) ([]models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE pattern_id = $1 ORDER BY start_at ASC", scheduleColumns)
	var items []models.Schedule
	if err := r.db.SelectContext(ctx, &items, query, patternID); err != nil {
		return nil, fmt.Errorf("list schedule occurrences: %w", err)
	}
	return items, nil
}

// UpdateInPlace mutates a sole occurrence together with its pattern bounds.
func (r *ScheduleRepository) UpdateInPlace(ctx context.Context, item *models.Schedule, pattern *models.RecurrencePattern) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin schedule update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	item.UpdatedAt = now
	const updateQuery = `UPDATE schedules SET title = :title, content = :content, location = :location,
start_at = :start_at, end_at = :end_at, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, updateQuery, item); err != nil {
		return fmt.Errorf("update schedule occurrence: %w", err)
	}

	if pattern != nil {
		pattern.UpdatedAt = now
		const patternQuery = `UPDATE recurrence_patterns SET repeat_start_date = :repeat_start_date,
repeat_end_date = :repeat_end_date, updated_at = :updated_at WHERE id = :id`
		if _, err = tx.NamedExecContext(ctx, patternQuery, pattern); err != nil {
			return fmt.Errorf("update schedule pattern: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule update: %w", err)
	}
	return nil
}

// Split re-parents one occurrence onto a fresh single-day pattern, applies
// its field changes, and optionally tightens the original pattern's bounds.
func (r *ScheduleRepository) Split(ctx context.Context, oldPatternID string, item *models.Schedule, newPattern *models.RecurrencePattern, bounds *PatternBounds) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin schedule split: %w", err)
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
	if _, err = tx.NamedExecContext(ctx, schedulePatternInsert, newPattern); err != nil {
		return fmt.Errorf("insert split pattern: %w", err)
	}

	item.PatternID = newPattern.ID
	item.UpdatedAt = now
	const reparentQuery = `UPDATE schedules SET pattern_id = :pattern_id, title = :title, content = :content,
location = :location, start_at = :start_at, end_at = :end_at, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, reparentQuery, item); err != nil {
		return fmt.Errorf("reparent schedule occurrence: %w", err)
	}

	if bounds != nil {
		const boundsQuery = `UPDATE recurrence_patterns SET repeat_start_date = $1, repeat_end_date = $2, updated_at = $3 WHERE id = $4`
		if _, err = tx.ExecContext(ctx, boundsQuery, bounds.Start, bounds.End, now, oldPatternID); err != nil {
			return fmt.Errorf("tighten schedule pattern bounds: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule split: %w", err)
	}
	return nil
}

// ShiftSeries applies a series edit as one bulk statement plus the pattern
// date shift, atomically.
func (r *ScheduleRepository) ShiftSeries(ctx context.Context, shift SeriesShift) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin schedule series shift: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const bulkQuery = `UPDATE schedules SET
start_at = start_at + make_interval(mins => $1),
end_at = end_at + make_interval(mins => $2),
title = $3, content = $4, location = $5, updated_at = $6
WHERE pattern_id = $7`
	if _, err = tx.ExecContext(ctx, bulkQuery, shift.StartDeltaMin, shift.EndDeltaMin,
		shift.Title, shift.Content, shift.Location, now, shift.PatternID); err != nil {
		return fmt.Errorf("shift schedule series: %w", err)
	}

	if shift.ShiftPattern {
		query := `UPDATE recurrence_patterns SET repeat_start_date = repeat_start_date + $1, updated_at = $2 WHERE id = $3`
		if shift.ShiftPatternEnd {
			query = `UPDATE recurrence_patterns SET repeat_start_date = repeat_start_date + $1,
repeat_end_date = repeat_end_date + $1, updated_at = $2 WHERE id = $3`
		}
		if _, err = tx.ExecContext(ctx, query, shift.PatternDayDiff, now, shift.PatternID); err != nil {
			return fmt.Errorf("shift schedule pattern dates: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule series shift: %w", err)
	}
	return nil
}

// DeleteOne removes an occurrence and cascades the pattern once empty. The
// pattern bounds are deliberately left as-is when other occurrences remain.
func (r *ScheduleRepository) DeleteOne(ctx context.Context, id, patternID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin schedule delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete schedule occurrence: %w", err)
	}
	const cascadeQuery = `DELETE FROM recurrence_patterns
WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM schedules WHERE pattern_id = $1)`
	if _, err = tx.ExecContext(ctx, cascadeQuery, patternID); err != nil {
		return fmt.Errorf("cascade schedule pattern: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule delete: %w", err)
	}
	return nil
}

// DeleteSeries removes every occurrence of a pattern, then the pattern.
func (r *ScheduleRepository) DeleteSeries(ctx context.Context, patternID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin schedule series delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM schedules WHERE pattern_id = $1", patternID); err != nil {
		return fmt.Errorf("delete schedule series: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM recurrence_patterns WHERE id = $1", patternID); err != nil {
		return fmt.Errorf("delete schedule pattern: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule series delete: %w", err)
	}
	return nil
}

// monthCoversPredicate matches spans that cover any day of the requested
// month. Same year: the month lies between the endpoint months. Spanning a
// year boundary: the month lies after the start or before the end.
const monthCoversPredicate = "((EXTRACT(YEAR FROM end_at) = EXTRACT(YEAR FROM start_at) AND $%d BETWEEN EXTRACT(MONTH FROM start_at) AND EXTRACT(MONTH FROM end_at)) OR (EXTRACT(YEAR FROM end_at) > EXTRACT(YEAR FROM start_at) AND ($%d >= EXTRACT(MONTH FROM start_at) OR $%d <= EXTRACT(MONTH FROM end_at))))"

// ListInRange returns the member's occurrences overlapping the optional
// year/month window, ordered by start.
func (r *ScheduleRepository) ListInRange(ctx context.Context, memberID string, year, month *int) ([]models.Schedule, error) {
	where := []string{"member_id = $1"}
	args := []interface{}{memberID}

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
		// Month without a year cannot use a window. A span counts for every
		// month it covers, including months strictly between its endpoints
		// (a yearly occurrence may run for most of a year).
		n := len(args) + 1
		where = append(where, fmt.Sprintf(monthCoversPredicate, n, n, n))
		args = append(args, *month)
	}

	query := fmt.Sprintf("SELECT %s FROM schedules WHERE %s ORDER BY start_at ASC", scheduleColumns, strings.Join(where, " AND "))
	var items []models.Schedule
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list schedules in range: %w", err)
	}
	return items, nil
}
