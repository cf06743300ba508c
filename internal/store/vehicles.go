package store

import (
	"context"
	"database/sql"
	"strings"

	"clubroster/internal/models"
)

const vehicleCols = `vehicle_id,member_id,log_book_number,entry_date,expiry_date,make,body_style,model,year,` +
	`registration,status,reason,archived,created_at,updated_at`

func (s *Store) CreateVehicle(ctx context.Context, v models.Vehicle) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO vehicles(`+vehicleCols+`) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`),
		v.VehicleID, v.MemberID, v.LogBookNumber, dateText(v.EntryDate), dateText(v.ExpiryDate),
		v.Make, v.BodyStyle, v.Model, v.Year, v.Registration, v.Status, v.Reason,
		boolToInt(v.Archived), timeText(v.CreatedAt), timeText(v.UpdatedAt),
	)
	return err
}

func scanVehicle(scan func(dest ...any) error) (models.Vehicle, error) {
	var v models.Vehicle
	var entry, expiry, reason sql.NullString
	var archived int
	var createdAt, updatedAt string
	err := scan(
		&v.VehicleID, &v.MemberID, &v.LogBookNumber, &entry, &expiry,
		&v.Make, &v.BodyStyle, &v.Model, &v.Year, &v.Registration, &v.Status, &reason,
		&archived, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.Vehicle{}, err
	}
	if reason.Valid {
		v.Reason = reason.String
	}
	v.Archived = archived == 1
	if v.EntryDate, err = datePtr(entry); err != nil {
		return models.Vehicle{}, err
	}
	if v.ExpiryDate, err = datePtr(expiry); err != nil {
		return models.Vehicle{}, err
	}
	if v.CreatedAt, err = mustTime(createdAt); err != nil {
		return models.Vehicle{}, err
	}
	if v.UpdatedAt, err = mustTime(updatedAt); err != nil {
		return models.Vehicle{}, err
	}
	return v, nil
}

func (s *Store) GetVehicle(ctx context.Context, id string) (models.Vehicle, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+vehicleCols+` FROM vehicles WHERE vehicle_id=?`), id)
	v, err := scanVehicle(row.Scan)
	if err == sql.ErrNoRows {
		return models.Vehicle{}, ErrNotFound
	}
	return v, err
}

func (s *Store) ListVehicles(ctx context.Context, query models.VehicleQuery) ([]models.Vehicle, error) {
	q := `SELECT ` + vehicleCols + ` FROM vehicles`
	var where []string
	var args []any
	if id := strings.TrimSpace(query.MemberID); id != "" {
		where = append(where, "member_id=?")
		args = append(args, id)
	}
	if reg := strings.TrimSpace(query.Registration); reg != "" {
		where = append(where, "LOWER(registration) LIKE ?")
		args = append(args, "%"+strings.ToLower(reg)+"%")
	}
	if !query.IncludeArchived {
		where = append(where, "archived=0")
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := s.db.QueryContext(ctx, s.q(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ActiveRegistrations returns registrations of non-archived vehicles,
// the set bulk ingestion and single inserts deduplicate against.
func (s *Store) ActiveRegistrations(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT registration FROM vehicles WHERE archived=0`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

var vehicleUpdateCols = map[string]bool{
	"log_book_number": true, "entry_date": true, "expiry_date": true,
	"make": true, "body_style": true, "model": true, "year": true,
	"registration": true, "status": true, "reason": true,
	"archived": true, "updated_at": true,
}

func (s *Store) UpdateVehicle(ctx context.Context, id string, set map[string]any) error {
	query, args := buildUpdate("vehicles", "vehicle_id", id, set, vehicleUpdateCols)
	_, err := s.db.ExecContext(ctx, s.q(query), args...)
	return err
}

func (s *Store) DeleteVehicle(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM vehicles WHERE vehicle_id=?`), id)
	if err != nil {
		return err
	}
	return notFoundOnZero(res)
}

// DeleteVehiclesByMember hard-deletes every vehicle of a member, the
// first leg of the member cascade delete.
func (s *Store) DeleteVehiclesByMember(ctx context.Context, memberID string) (int, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM vehicles WHERE member_id=?`), memberID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) DeleteAllVehicles(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM vehicles`))
	return err
}
