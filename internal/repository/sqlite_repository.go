package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"powerplant_project/internal/config"
	"powerplant_project/internal/domain"
)

// SQLiteStore implements BatteryStore with SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed store
func NewSQLiteStore(db *config.SQLiteDatabase) *SQLiteStore {
	return &SQLiteStore{db: db.DB}
}

// Insert is a single conditional statement so the postcode check and the
// write cannot interleave with another writer
func (r *SQLiteStore) Insert(ctx context.Context, battery *domain.Battery) error {
	query := `
		INSERT INTO batteries (name, postcode, capacity)
		SELECT ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM batteries WHERE postcode = ?)
	`

	result, err := r.db.ExecContext(ctx, query, battery.Name, battery.Postcode, battery.Capacity, battery.Postcode)
	if err != nil {
		return fmt.Errorf("failed to insert battery: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrDuplicatePostcode
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert id: %w", err)
	}

	battery.ID = id
	return nil
}

func (r *SQLiteStore) InsertMany(ctx context.Context, batteries []domain.Battery) ([]domain.Battery, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO batteries (name, postcode, capacity) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	saved := make([]domain.Battery, len(batteries))
	for i, b := range batteries {
		result, err := stmt.ExecContext(ctx, b.Name, b.Postcode, b.Capacity)
		if err != nil {
			return nil, fmt.Errorf("failed to insert battery %d: %w", i, err)
		}
		if b.ID, err = result.LastInsertId(); err != nil {
			return nil, fmt.Errorf("failed to get insert id: %w", err)
		}
		saved[i] = b
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit batteries: %w", err)
	}
	return saved, nil
}

func (r *SQLiteStore) FindAll(ctx context.Context) ([]domain.Battery, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, postcode, capacity FROM batteries ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query batteries: %w", err)
	}
	defer rows.Close()

	batteries := make([]domain.Battery, 0)
	for rows.Next() {
		var b domain.Battery
		if err := rows.Scan(&b.ID, &b.Name, &b.Postcode, &b.Capacity); err != nil {
			return nil, fmt.Errorf("failed to scan battery: %w", err)
		}
		batteries = append(batteries, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batteries: %w", err)
	}

	return batteries, nil
}

func (r *SQLiteStore) FindByID(ctx context.Context, id int64) (*domain.Battery, error) {
	query := `SELECT id, name, postcode, capacity FROM batteries WHERE id = ?`

	var b domain.Battery
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Name, &b.Postcode, &b.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query battery: %w", err)
	}
	return &b, nil
}

func (r *SQLiteStore) FindByPostcode(ctx context.Context, postcode string) (*domain.Battery, bool, error) {
	query := `SELECT id, name, postcode, capacity FROM batteries WHERE postcode = ? ORDER BY id ASC LIMIT 1`

	var b domain.Battery
	err := r.db.QueryRowContext(ctx, query, postcode).Scan(&b.ID, &b.Name, &b.Postcode, &b.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query battery by postcode: %w", err)
	}
	return &b, true, nil
}

func (r *SQLiteStore) Update(ctx context.Context, battery *domain.Battery) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT postcode FROM batteries WHERE id = ?`, battery.ID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query battery: %w", err)
	}

	if current != battery.Postcode {
		var exists int
		err = tx.QueryRowContext(ctx, `SELECT 1 FROM batteries WHERE postcode = ? AND id != ? LIMIT 1`,
			battery.Postcode, battery.ID).Scan(&exists)
		if err == nil {
			return ErrDuplicatePostcode
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check postcode: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE batteries SET name = ?, postcode = ?, capacity = ? WHERE id = ?`,
		battery.Name, battery.Postcode, battery.Capacity, battery.ID)
	if err != nil {
		return fmt.Errorf("failed to update battery: %w", err)
	}

	return tx.Commit()
}

func (r *SQLiteStore) Type() string {
	return "sqlite"
}
