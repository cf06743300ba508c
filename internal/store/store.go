package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clubroster/internal/models"
)

var ErrNotFound = errors.New("not found")
var ErrConflict = errors.New("conflict")

// Store speaks SQL to the configured backing database. Queries are
// written with ? placeholders and rebound for postgres at call time.
type Store struct {
	db     *sql.DB
	driver string
}

func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: strings.ToLower(driver)}
}

// q rewrites ? placeholders to $N for the postgres wire protocol; the
// sqlite and mysql drivers take ? as-is.
func (s *Store) q(query string) string {
	if s.driver != "pgx" && s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func textPtr(ns sql.NullString) *string {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	v := ns.String
	return &v
}

// datePtr reparses a TEXT-stored date; empty string means absent.
func datePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	return models.ParseDate(ns.String)
}

// mustTime parses a required timestamp column.
func mustTime(raw string) (time.Time, error) {
	t, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, fmt.Errorf("empty timestamp column")
	}
	return *t, nil
}

func timeText(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func dateText(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeText(*t)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO users(user_id,email,name,role,password_hash,picture,created_at) VALUES(?,?,?,?,?,?,?)`),
		u.UserID, u.Email, u.Name, u.Role, u.PasswordHash, u.Picture, timeText(u.CreatedAt),
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *Store) scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	var createdAt string
	var hash, picture sql.NullString
	err := row.Scan(&u.UserID, &u.Email, &u.Name, &u.Role, &hash, &picture, &createdAt)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = textPtr(hash)
	u.Picture = textPtr(picture)
	if u.CreatedAt, err = mustTime(createdAt); err != nil {
		return models.User{}, err
	}
	return u, nil
}

const userCols = `user_id,email,name,role,password_hash,picture,created_at`

func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, s.q(`SELECT `+userCols+` FROM users WHERE user_id=?`), id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, s.q(`SELECT `+userCols+` FROM users WHERE email=?`), email))
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+userCols+` FROM users ORDER BY created_at ASC`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.User
	for rows.Next() {
		var u models.User
		var createdAt string
		var hash, picture sql.NullString
		if err := rows.Scan(&u.UserID, &u.Email, &u.Name, &u.Role, &hash, &picture, &createdAt); err != nil {
			return nil, err
		}
		u.PasswordHash = textPtr(hash)
		u.Picture = textPtr(picture)
		if u.CreatedAt, err = mustTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateUser rewrites name and role; existence is checked by callers so
// an unchanged row does not read as missing under mysql's affected-rows
// semantics.
func (s *Store) UpdateUser(ctx context.Context, id, name, role string) error {
	_, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET name=?, role=? WHERE user_id=?`), name, role, id)
	return err
}

// UpdateUserProfile refreshes the delegated-provider fields on login.
func (s *Store) UpdateUserProfile(ctx context.Context, id, name string, picture *string) error {
	_, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET name=?, picture=? WHERE user_id=?`), name, picture, id)
	return err
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM users WHERE user_id=?`), id)
	if err != nil {
		return err
	}
	return notFoundOnZero(res)
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(1) FROM users`)).Scan(&n)
	return n, err
}

func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(1) FROM users WHERE role=?`), models.RoleAdmin).Scan(&n)
	return n, err
}

// EnsureAdmin upserts the bootstrap admin account from configuration.
func (s *Store) EnsureAdmin(ctx context.Context, email, name, passwordHash string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || passwordHash == "" {
		return nil
	}
	u, err := s.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return s.CreateUser(ctx, models.User{
			UserID:       NewID("user"),
			Email:        email,
			Name:         name,
			Role:         models.RoleAdmin,
			PasswordHash: &passwordHash,
			CreatedAt:    time.Now().UTC(),
		})
	}
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		s.q(`UPDATE users SET role=?, password_hash=? WHERE user_id=?`),
		models.RoleAdmin, passwordHash, u.UserID,
	)
	return err
}

func (s *Store) CreateSession(ctx context.Context, sess models.Session) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO sessions(id,user_id,token_hash,expires_at,created_at) VALUES(?,?,?,?,?)`),
		sess.ID, sess.UserID, sess.TokenHash, timeText(sess.ExpiresAt), timeText(sess.CreatedAt),
	)
	return err
}

func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (models.Session, error) {
	var sess models.Session
	var expiresAt, createdAt string
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT id,user_id,token_hash,expires_at,created_at FROM sessions WHERE token_hash=?`),
		tokenHash,
	).Scan(&sess.ID, &sess.UserID, &sess.TokenHash, &expiresAt, &createdAt)
	if err == sql.ErrNoRows {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, err
	}
	if sess.ExpiresAt, err = mustTime(expiresAt); err != nil {
		return models.Session{}, err
	}
	if sess.CreatedAt, err = mustTime(createdAt); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

// DeleteSessionByTokenHash is idempotent; a missing row is not an error.
func (s *Store) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE token_hash=?`), tokenHash)
	return err
}

func notFoundOnZero(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
