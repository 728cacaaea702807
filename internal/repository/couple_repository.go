package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/duetday/duetday-api/internal/models"
)

// CoupleRepository persists couple connections.
type CoupleRepository struct {
	db *sqlx.DB
}

// NewCoupleRepository creates a new couple repository.
func NewCoupleRepository(db *sqlx.DB) *CoupleRepository {
	return &CoupleRepository{db: db}
}

// FindByID loads a couple by id.
func (r *CoupleRepository) FindByID(ctx context.Context, id string) (*models.Couple, error) {
	const query = `SELECT id, first_date, created_at, updated_at FROM couples WHERE id = $1`
	var couple models.Couple
	if err := r.db.GetContext(ctx, &couple, query, id); err != nil {
		return nil, err
	}
	return &couple, nil
}

// Connect inserts the couple row and links both members to it atomically.
func (r *CoupleRepository) Connect(ctx context.Context, couple *models.Couple, memberID, partnerID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin couple connect: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if couple.ID == "" {
		couple.ID = uuid.NewString()
	}
	couple.CreatedAt = now
	couple.UpdatedAt = now
	const insertQuery = `INSERT INTO couples (id, first_date, created_at, updated_at) VALUES (:id, :first_date, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, couple); err != nil {
		return fmt.Errorf("insert couple: %w", err)
	}

	const linkQuery = `UPDATE members SET couple_id = $1, updated_at = $2 WHERE id = $3 AND couple_id IS NULL`
	for _, id := range []string{memberID, partnerID} {
		res, execErr := tx.ExecContext(ctx, linkQuery, couple.ID, now, id)
		if execErr != nil {
			err = fmt.Errorf("link member %s: %w", id, execErr)
			return err
		}
		affected, affErr := res.RowsAffected()
		if affErr != nil {
			err = fmt.Errorf("link member %s: %w", id, affErr)
			return err
		}
		if affected == 0 {
			err = fmt.Errorf("member %s is missing or already coupled", id)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit couple connect: %w", err)
	}
	return nil
}
