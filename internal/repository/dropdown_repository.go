package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/educrm-api/internal/models"
)

const dropdownColumns = `id, module, field_name, key, value, sequence, is_default, created_at, updated_at`

// DropdownRepository provides database access for lookup values.
type DropdownRepository struct {
	db *sqlx.DB
}

// NewDropdownRepository creates a new instance of DropdownRepository.
func NewDropdownRepository(db *sqlx.DB) *DropdownRepository {
	return &DropdownRepository{db: db}
}

// List returns dropdown rows, optionally limited to one module, ordered for display.
func (r *DropdownRepository) List(ctx context.Context, module string) ([]models.Dropdown, error) {
	query := fmt.Sprintf("SELECT %s FROM dropdowns", dropdownColumns)
	var args []interface{}
	if module != "" {
		query += " WHERE module = $1"
		args = append(args, module)
	}
	query += " ORDER BY module, field_name, sequence, key"

	rows := []models.Dropdown{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list dropdowns: %w", err)
	}
	return rows, nil
}

// FindByID returns a dropdown row.
func (r *DropdownRepository) FindByID(ctx context.Context, id string) (*models.Dropdown, error) {
	query := fmt.Sprintf("SELECT %s FROM dropdowns WHERE id = $1", dropdownColumns)
	var row models.Dropdown
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find dropdown: %w", err)
	}
	return &row, nil
}

// Create inserts a dropdown row. When it is the default, other rows of the
// same module field lose their default flag in the same transaction.
func (r *DropdownRepository) Create(ctx context.Context, row *models.Dropdown) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now

	return r.withDefault(ctx, row, `INSERT INTO dropdowns (id, module, field_name, key, value, sequence, is_default, created_at, updated_at)
VALUES (:id, :module, :field_name, :key, :value, :sequence, :is_default, :created_at, :updated_at)`)
}

// Update persists a dropdown row.
func (r *DropdownRepository) Update(ctx context.Context, row *models.Dropdown) error {
	row.UpdatedAt = time.Now().UTC()
	return r.withDefault(ctx, row, `UPDATE dropdowns SET key = :key, value = :value, sequence = :sequence, is_default = :is_default,
updated_at = :updated_at WHERE id = :id`)
}

func (r *DropdownRepository) withDefault(ctx context.Context, row *models.Dropdown, query string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin dropdown tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if row.IsDefault {
		const clear = `UPDATE dropdowns SET is_default = FALSE WHERE module = $1 AND field_name = $2 AND id <> $3`
		if _, err := tx.ExecContext(ctx, clear, row.Module, row.FieldName, row.ID); err != nil {
			return fmt.Errorf("clear dropdown default: %w", err)
		}
	}
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("save dropdown: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dropdown: %w", err)
	}
	return nil
}

// Delete removes a dropdown row and reports whether it existed.
func (r *DropdownRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dropdowns WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete dropdown: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete dropdown rows affected: %w", err)
	}
	return rows > 0, nil
}
