package store

import (
	"context"
	"strings"

	"clubroster/internal/models"
)

// Vehicle option rows have no uniqueness constraint; duplicate
// (type, value) pairs are allowed.
func (s *Store) CreateOption(ctx context.Context, o models.VehicleOption) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO vehicle_options(option_id,type,value,created_at) VALUES(?,?,?,?)`),
		o.OptionID, o.Type, o.Value, timeText(o.CreatedAt),
	)
	return err
}

func (s *Store) ListOptions(ctx context.Context, optionType string) ([]models.VehicleOption, error) {
	q := `SELECT option_id,type,value,created_at FROM vehicle_options`
	var args []any
	if t := strings.TrimSpace(optionType); t != "" {
		q += ` WHERE type=?`
		args = append(args, t)
	}
	q += ` ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, s.q(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.VehicleOption
	for rows.Next() {
		var o models.VehicleOption
		var createdAt string
		if err := rows.Scan(&o.OptionID, &o.Type, &o.Value, &createdAt); err != nil {
			return nil, err
		}
		if o.CreatedAt, err = mustTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) CountOptionsByType(ctx context.Context, optionType string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(1) FROM vehicle_options WHERE type=?`), optionType).Scan(&n)
	return n, err
}

func (s *Store) DeleteOption(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM vehicle_options WHERE option_id=?`), id)
	if err != nil {
		return err
	}
	return notFoundOnZero(res)
}

func (s *Store) DeleteAllOptions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM vehicle_options`))
	return err
}
