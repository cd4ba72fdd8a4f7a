package auth

import (
	"context"
	"time"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

/*
CredentialStore
---------------
Persistence port for the two user partitions (students, trainers).
Email uniqueness is joint across both partitions and is enforced by the
store itself; InsertStudent/InsertTrainer return ErrEmailAlreadyExists when
the storage-level guard fires, and ErrDBUnavailable for anything else.
*/
type CredentialStore interface {
	// FindByEmail looks in the student partition first, then trainers.
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	InsertStudent(ctx context.Context, s domain.NewStudent) (id string, err error)
	InsertTrainer(ctx context.Context, t domain.NewTrainer) (id string, err error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt. Verify returns (false, nil) on mismatch.
*/
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
}

/*
TokenIssuer
-----------
Issues and verifies access/refresh JWTs. The two kinds are signed with
different secrets and never verify as each other.
Used by service + auth middleware.
*/
type TokenIssuer interface {
	IssueAccessToken(c domain.Claims) (string, error)
	IssueRefreshToken(c domain.Claims) (string, error)
	VerifyAccessToken(token string) (domain.Claims, error)
	VerifyRefreshToken(token string) (domain.Claims, error)
}

/*
EventPublisher
--------------
Publishes events to RabbitMQ.
The mailer consumes these and sends welcome emails.
Auth-service does NOT send emails directly.
*/
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, evt UserRegisteredEvent) error
}

type UserRegisteredEvent struct {
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	OccurredAt time.Time `json:"occurred_at"`
}
