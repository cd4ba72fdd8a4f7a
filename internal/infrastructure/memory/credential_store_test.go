package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/sports-portal/services/auth-service/internal/application/auth"
	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

var _ auth.CredentialStore = (*CredentialStore)(nil)

func trainer(email string) domain.NewTrainer {
	return domain.NewTrainer{
		Profile:      domain.Profile{Email: email, FirstName: "Oleg", LastName: "Petrov", Gender: domain.GenderMale},
		PasswordHash: "HASH",
	}
}

func student(email string) domain.NewStudent {
	return domain.NewStudent{
		Profile:      domain.Profile{Email: email, FirstName: "Anna", LastName: "Ivanova", Gender: domain.GenderFemale},
		PasswordHash: "HASH",
		SportID:      "3",
	}
}

func TestCredentialStore_InsertAndFind(t *testing.T) {
	t.Parallel()
	s := NewCredentialStore()
	ctx := context.Background()

	sid, err := s.InsertStudent(ctx, student("anna@example.com"))
	require.NoError(t, err)
	tid, err := s.InsertTrainer(ctx, trainer("coach@example.com"))
	require.NoError(t, err)
	assert.NotEqual(t, sid, tid)

	u, err := s.FindByEmail(ctx, "anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, u.Role)
	assert.Equal(t, sid, u.ID)

	u, err = s.FindByEmail(ctx, " coach@example.com ")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTrainer, u.Role)

	_, err = s.FindByEmail(ctx, "Anna@example.com")
	assert.True(t, domain.Is(err, "user_not_found"))
}

func TestCredentialStore_JointUniqueness(t *testing.T) {
	t.Parallel()
	s := NewCredentialStore()
	ctx := context.Background()

	_, err := s.InsertTrainer(ctx, trainer("x@example.com"))
	require.NoError(t, err)

	_, err = s.InsertStudent(ctx, student("x@example.com"))
	assert.True(t, domain.Is(err, "email_already_exists"), "got %v", err)

	ok, err := s.EmailExists(ctx, "x@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCredentialStore_ConcurrentInsert_OneWinner(t *testing.T) {
	t.Parallel()
	s := NewCredentialStore()

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, errs[i] = s.InsertStudent(context.Background(), student("race@example.com"))
			} else {
				_, errs[i] = s.InsertTrainer(context.Background(), trainer("race@example.com"))
			}
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestCredentialStore_FindInPartition(t *testing.T) {
	t.Parallel()
	s := NewCredentialStore()
	ctx := context.Background()

	_, err := s.InsertTrainer(ctx, trainer("coach@example.com"))
	require.NoError(t, err)

	_, err = s.FindInPartition(ctx, domain.RoleStudent, "coach@example.com")
	assert.True(t, domain.Is(err, "user_not_found"))

	u, err := s.FindInPartition(ctx, domain.RoleTrainer, "coach@example.com")
	require.NoError(t, err)
	assert.Equal(t, "coach@example.com", u.Email)

	_, err = s.FindInPartition(ctx, "admin", "coach@example.com")
	assert.True(t, domain.Is(err, "invalid_role"))
}

func TestCredentialStore_EmptyEmail(t *testing.T) {
	t.Parallel()
	_, err := NewCredentialStore().InsertTrainer(context.Background(), trainer("  "))
	assert.True(t, domain.Is(err, "missing_field"))
}

func TestNoopPublisher(t *testing.T) {
	t.Parallel()
	var p auth.EventPublisher = NewNoopPublisher()
	require.NoError(t, p.PublishUserRegistered(context.Background(), auth.UserRegisteredEvent{UserID: "u1"}))
}
