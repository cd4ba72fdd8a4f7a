package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

// CredentialStore is an in-process store for tests and local runs. One
// mutex covers both partitions so the uniqueness check and the insert are
// atomic.
type CredentialStore struct {
	mu       sync.RWMutex
	students map[string]domain.User // email -> user
	trainers map[string]domain.User
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		students: make(map[string]domain.User),
		trainers: make(map[string]domain.User),
	}
}

func (r *CredentialStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	email = domain.NormalizeEmail(email)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.students[email]; ok {
		return u, nil
	}
	if u, ok := r.trainers[email]; ok {
		return u, nil
	}
	return domain.User{}, domain.ErrUserNotFound()
}

// FindInPartition looks up email in a single role's partition.
func (r *CredentialStore) FindInPartition(ctx context.Context, role domain.Role, email string) (domain.User, error) {
	email = domain.NormalizeEmail(email)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var partition map[string]domain.User
	switch role {
	case domain.RoleStudent:
		partition = r.students
	case domain.RoleTrainer:
		partition = r.trainers
	default:
		return domain.User{}, domain.ErrInvalidRole(string(role))
	}
	if u, ok := partition[email]; ok {
		return u, nil
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (r *CredentialStore) EmailExists(ctx context.Context, email string) (bool, error) {
	email = domain.NormalizeEmail(email)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.existsLocked(email), nil
}

func (r *CredentialStore) InsertStudent(ctx context.Context, s domain.NewStudent) (string, error) {
	return r.insert(r.students, domain.RoleStudent, s.Profile, s.PasswordHash)
}

func (r *CredentialStore) InsertTrainer(ctx context.Context, t domain.NewTrainer) (string, error) {
	return r.insert(r.trainers, domain.RoleTrainer, t.Profile, t.PasswordHash)
}

func (r *CredentialStore) Ping(ctx context.Context) error { return nil }

func (r *CredentialStore) existsLocked(email string) bool {
	_, s := r.students[email]
	_, t := r.trainers[email]
	return s || t
}

func (r *CredentialStore) insert(partition map[string]domain.User, role domain.Role, p domain.Profile, hash string) (string, error) {
	email := domain.NormalizeEmail(p.Email)
	if email == "" {
		return "", domain.ErrMissingField("email")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.existsLocked(email) {
		return "", domain.ErrEmailAlreadyExists()
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Role:         role,
		Email:        email,
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		MiddleName:   p.MiddleName,
		Gender:       p.Gender,
	}
	partition[email] = u
	return u.ID, nil
}
