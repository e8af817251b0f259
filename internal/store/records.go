package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/foodmap/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements Records over either the database or a transaction.
type queries struct {
	q querier
}

const selectColumns = `id, name, address, opening_hours, delivery_threshold, notes, menu_image, is_favorite, updated_at`

// Add inserts r as a new row and returns the id assigned by SQLite.
// Any id already on r is ignored.
func (s queries) Add(ctx context.Context, r model.StoreRecord) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, fmt.Errorf("add record: %w", err)
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO stores
		(name, address, opening_hours, delivery_threshold, notes, menu_image, is_favorite, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.Name,
		r.Address,
		r.OpeningHours,
		thresholdArg(r.DeliveryThreshold),
		r.Notes,
		r.MenuImage,
		r.IsFavorite,
		r.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("add record %q: %w", r.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add record %q: last insert id: %w", r.Name, err)
	}
	return id, nil
}

// Update applies the non-nil fields of p to the row with the given id.
// Returns ErrNotFound if no such row exists.
func (s queries) Update(ctx context.Context, id int64, p model.Patch) error {
	if p.IsEmpty() {
		_, err := s.Get(ctx, id)
		return err
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("update record %d: %w", id, model.ErrEmptyName)
	}

	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Address != nil {
		set("address", *p.Address)
	}
	if p.OpeningHours != nil {
		set("opening_hours", *p.OpeningHours)
	}
	if p.DeliveryThreshold != nil {
		set("delivery_threshold", thresholdArg(*p.DeliveryThreshold))
	}
	if p.Notes != nil {
		set("notes", *p.Notes)
	}
	if p.MenuImage != nil {
		set("menu_image", *p.MenuImage)
	}
	if p.IsFavorite != nil {
		set("is_favorite", *p.IsFavorite)
	}
	if p.UpdatedAt != nil {
		set("updated_at", *p.UpdatedAt)
	}
	args = append(args, id)

	result, err := s.q.ExecContext(ctx,
		"UPDATE stores SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return fmt.Errorf("update record %d: %w", id, err)
	}

	return requireRow(result, id, "update")
}

// Delete removes the row with the given id.
// Returns ErrNotFound if no such row exists.
func (s queries) Delete(ctx context.Context, id int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM stores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	return requireRow(result, id, "delete")
}

// Clear removes every row. Ids are not reused afterwards.
func (s queries) Clear(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM stores`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	return nil
}

// Get returns the row with the given id, or ErrNotFound.
func (s queries) Get(ctx context.Context, id int64) (model.StoreRecord, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM stores WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StoreRecord{}, fmt.Errorf("get record %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.StoreRecord{}, fmt.Errorf("get record %d: %w", id, err)
	}
	return r, nil
}

// FindFirstByName returns the row with exactly this name and the lowest id.
// Names are not unique; the lowest id is the stable tie-break.
func (s queries) FindFirstByName(ctx context.Context, name string) (model.StoreRecord, bool, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM stores
		WHERE name = ?
		ORDER BY id ASC
		LIMIT 1
	`, name)

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StoreRecord{}, false, nil
	}
	if err != nil {
		return model.StoreRecord{}, false, fmt.Errorf("find record by name %q: %w", name, err)
	}
	return r, true, nil
}

// List returns every row ordered by id.
func (s queries) List(ctx context.Context) ([]model.StoreRecord, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+selectColumns+` FROM stores ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := []model.StoreRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (model.StoreRecord, error) {
	var r model.StoreRecord
	var threshold sql.NullFloat64
	err := sc.Scan(
		&r.ID,
		&r.Name,
		&r.Address,
		&r.OpeningHours,
		&threshold,
		&r.Notes,
		&r.MenuImage,
		&r.IsFavorite,
		&r.UpdatedAt,
	)
	if err != nil {
		return model.StoreRecord{}, err
	}
	if threshold.Valid {
		r.DeliveryThreshold = model.ThresholdOf(threshold.Float64)
	}
	return r, nil
}

// thresholdArg maps an unknown threshold to NULL.
func thresholdArg(t model.Threshold) any {
	if !t.Known {
		return nil
	}
	return t.Amount
}

func requireRow(result sql.Result, id int64, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s record %d: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s record %d: %w", op, id, ErrNotFound)
	}
	return nil
}
