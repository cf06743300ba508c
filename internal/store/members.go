package store

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"clubroster/internal/models"
)

const memberCols = `member_id,member_number,name,address,suburb,postcode,state,phone1,phone2,email1,email2,` +
	`life_member,financial,inactive,membership_type,family_members,interest,date_paid,expiry_date,comments,` +
	`receive_emails,receive_sms,created_at,updated_at`

func (s *Store) CreateMember(ctx context.Context, m models.Member) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO members(`+memberCols+`) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`),
		m.MemberID, m.MemberNumber, m.Name, m.Address, m.Suburb, m.Postcode, m.State,
		m.Phone1, m.Phone2, m.Email1, m.Email2,
		boolToInt(m.LifeMember), boolToInt(m.Financial), boolToInt(m.Inactive),
		m.MembershipType, models.FamilyMembersText(m.FamilyMembers), m.Interest,
		dateText(m.DatePaid), dateText(m.ExpiryDate), m.Comments,
		boolToInt(m.ReceiveEmails), boolToInt(m.ReceiveSMS),
		timeText(m.CreatedAt), timeText(m.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func scanMember(scan func(dest ...any) error) (models.Member, error) {
	var m models.Member
	var state, phone1, phone2, email1, email2, family, datePaid, expiry, comments sql.NullString
	var life, financial, inactive, rcvEmails, rcvSMS int
	var createdAt, updatedAt string
	err := scan(
		&m.MemberID, &m.MemberNumber, &m.Name, &m.Address, &m.Suburb, &m.Postcode, &state,
		&phone1, &phone2, &email1, &email2,
		&life, &financial, &inactive, &m.MembershipType, &family, &m.Interest,
		&datePaid, &expiry, &comments, &rcvEmails, &rcvSMS, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.Member{}, err
	}
	m.State = textPtr(state)
	m.Phone1 = textPtr(phone1)
	m.Phone2 = textPtr(phone2)
	m.Email1 = textPtr(email1)
	m.Email2 = textPtr(email2)
	m.Comments = textPtr(comments)
	m.LifeMember = life == 1
	m.Financial = financial == 1
	m.Inactive = inactive == 1
	m.ReceiveEmails = rcvEmails == 1
	m.ReceiveSMS = rcvSMS == 1
	if family.Valid {
		m.FamilyMembers = models.ParseFamilyMembers(family.String)
	}
	if m.DatePaid, err = datePtr(datePaid); err != nil {
		return models.Member{}, err
	}
	if m.ExpiryDate, err = datePtr(expiry); err != nil {
		return models.Member{}, err
	}
	if m.CreatedAt, err = mustTime(createdAt); err != nil {
		return models.Member{}, err
	}
	if m.UpdatedAt, err = mustTime(updatedAt); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

func (s *Store) GetMember(ctx context.Context, id string) (models.Member, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+memberCols+` FROM members WHERE member_id=?`), id)
	m, err := scanMember(row.Scan)
	if err == sql.ErrNoRows {
		return models.Member{}, ErrNotFound
	}
	return m, err
}

func (s *Store) queryMembers(ctx context.Context, query string, args ...any) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Member
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListMembers(ctx context.Context, query models.MemberQuery) ([]models.Member, error) {
	if num := strings.TrimSpace(query.MemberNumber); num != "" {
		return s.queryMembers(ctx, `SELECT `+memberCols+` FROM members WHERE member_number=?`, num)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		return s.queryMembers(ctx,
			`SELECT `+memberCols+` FROM members WHERE LOWER(name) LIKE ? OR LOWER(email1) LIKE ? OR LOWER(email2) LIKE ?`,
			like, like, like)
	}
	return s.queryMembers(ctx, `SELECT `+memberCols+` FROM members`)
}

func (s *Store) MemberNumbers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT member_number FROM members`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MemberExpiry is the minimal projection the unfinancial sweep works
// from. Expiry stays raw text so one malformed row cannot poison the
// whole scan.
type MemberExpiry struct {
	MemberID   string
	ExpiryDate string
}

func (s *Store) FinancialMemberExpiries(ctx context.Context) ([]MemberExpiry, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT member_id, expiry_date FROM members WHERE financial=1`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MemberExpiry
	for rows.Next() {
		var e MemberExpiry
		var expiry sql.NullString
		if err := rows.Scan(&e.MemberID, &expiry); err != nil {
			return nil, err
		}
		e.ExpiryDate = expiry.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// Member update columns settable through UpdateMember. Anything else in
// the set map is a programming error.
var memberUpdateCols = map[string]bool{
	"member_number": true, "name": true, "address": true, "suburb": true,
	"postcode": true, "state": true, "phone1": true, "phone2": true,
	"email1": true, "email2": true, "life_member": true, "financial": true,
	"inactive": true, "membership_type": true, "family_members": true,
	"interest": true, "date_paid": true, "expiry_date": true, "comments": true,
	"receive_emails": true, "receive_sms": true, "updated_at": true,
}

// UpdateMember applies only the columns present in set, mirroring the
// partial-update contract of the API. Existence is checked by callers.
func (s *Store) UpdateMember(ctx context.Context, id string, set map[string]any) error {
	query, args := buildUpdate("members", "member_id", id, set, memberUpdateCols)
	_, err := s.db.ExecContext(ctx, s.q(query), args...)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *Store) DeleteMember(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM members WHERE member_id=?`), id)
	if err != nil {
		return err
	}
	return notFoundOnZero(res)
}

func (s *Store) DeleteAllMembers(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM members`))
	return err
}

func (s *Store) Suburbs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT DISTINCT suburb FROM members`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// buildUpdate assembles an UPDATE over the allow-listed columns, in
// sorted column order so statements are deterministic.
func buildUpdate(table, idCol, id string, set map[string]any, allowed map[string]bool) (string, []any) {
	cols := make([]string, 0, len(set))
	for col := range set {
		if !allowed[col] {
			panic("store: column not updatable: " + col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	var b strings.Builder
	b.WriteString("UPDATE " + table + " SET ")
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col + "=?")
		args = append(args, set[col])
	}
	b.WriteString(" WHERE " + idCol + "=?")
	args = append(args, id)
	return b.String(), args
}
