package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

const defaultQueryTimeout = 5 * time.Second

// CredentialStore keeps students and trainers in separate tables. The
// user_emails table is the joint uniqueness guard: every insert claims the
// email there first, inside the same transaction as the role row.
type CredentialStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewCredentialStore(db *sql.DB, queryTimeout time.Duration) *CredentialStore {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &CredentialStore{db: db, timeout: queryTimeout}
}

// ---------- helpers ----------

func (r *CredentialStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func mapWriteErr(err error) error {
	if isUniqueViolation(err) {
		return domain.ErrEmailAlreadyExists()
	}
	return domain.ErrDBUnavailable(err)
}

const (
	findStudentQ = `
SELECT id::text, email, password_hash, first_name, last_name, middle_name, gender
FROM students
WHERE email = $1
LIMIT 1;
`
	findTrainerQ = `
SELECT id::text, email, password_hash, first_name, last_name, middle_name, gender
FROM trainers
WHERE email = $1
LIMIT 1;
`
)

func (r *CredentialStore) findIn(ctx context.Context, q, email string) (userRow, bool, error) {
	var ur userRow
	err := r.db.QueryRowContext(ctx, q, email).Scan(
		&ur.ID,
		&ur.Email,
		&ur.PasswordHash,
		&ur.FirstName,
		&ur.LastName,
		&ur.MiddleName,
		&ur.Gender,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return userRow{}, false, nil
	}
	if err != nil {
		return userRow{}, false, err
	}
	return ur, true, nil
}

// ---------- auth.CredentialStore ----------

func (r *CredentialStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := r.FindInPartition(ctx, domain.RoleStudent, email)
	if err == nil || !domain.Is(err, "user_not_found") {
		return u, err
	}
	return r.FindInPartition(ctx, domain.RoleTrainer, email)
}

// FindInPartition looks up email in a single role table.
func (r *CredentialStore) FindInPartition(ctx context.Context, role domain.Role, email string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	q := findStudentQ
	switch role {
	case domain.RoleStudent:
	case domain.RoleTrainer:
		q = findTrainerQ
	default:
		return domain.User{}, domain.ErrInvalidRole(string(role))
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ur, ok, err := r.findIn(ctx, q, email)
	if err != nil {
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return ur.toDomain(role), nil
}

func (r *CredentialStore) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const q = `SELECT EXISTS (SELECT 1 FROM user_emails WHERE email = $1);`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, domain.NormalizeEmail(email)).Scan(&exists); err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	return exists, nil
}

func (r *CredentialStore) InsertStudent(ctx context.Context, s domain.NewStudent) (string, error) {
	const q = `
INSERT INTO students (email, password_hash, first_name, last_name, middle_name, gender, birth_date, sport_id, in_team, team_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id::text;
`
	var teamID sql.NullString
	if s.TeamID != "" {
		teamID = sql.NullString{String: s.TeamID, Valid: true}
	}
	return r.insert(ctx, domain.RoleStudent, s.Email, q,
		s.Email, s.PasswordHash, s.FirstName, s.LastName, s.MiddleName, string(s.Gender),
		s.BirthDate, s.SportID, s.InTeam, teamID,
	)
}

func (r *CredentialStore) InsertTrainer(ctx context.Context, t domain.NewTrainer) (string, error) {
	const q = `
INSERT INTO trainers (email, password_hash, first_name, last_name, middle_name, gender)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id::text;
`
	return r.insert(ctx, domain.RoleTrainer, t.Email, q,
		t.Email, t.PasswordHash, t.FirstName, t.LastName, t.MiddleName, string(t.Gender),
	)
}

// insert claims the email in user_emails and writes the role row in one
// transaction; a unique violation on either table means the email is taken.
func (r *CredentialStore) insert(ctx context.Context, role domain.Role, email, q string, args ...any) (string, error) {
	if email == "" {
		return "", domain.ErrMissingField("email")
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", domain.ErrDBUnavailable(err)
	}
	defer func() { _ = tx.Rollback() }()

	const claimQ = `INSERT INTO user_emails (email, role) VALUES ($1, $2);`
	if _, err := tx.ExecContext(ctx, claimQ, email, string(role)); err != nil {
		return "", mapWriteErr(err)
	}

	var id string
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
		return "", mapWriteErr(err)
	}

	if err := tx.Commit(); err != nil {
		return "", mapWriteErr(err)
	}
	return id, nil
}

// Ping is used by the readiness probe.
func (r *CredentialStore) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.PingContext(ctx)
}
