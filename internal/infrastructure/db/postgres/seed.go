package postgres

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

type SeederHasher interface {
	Hash(ctx context.Context, password string) (string, error)
}

type SeederStore interface {
	InsertStudent(ctx context.Context, s domain.NewStudent) (string, error)
	InsertTrainer(ctx context.Context, t domain.NewTrainer) (string, error)
}

// SeedDemoAccounts creates one student and one trainer for local
// development. Existing emails are skipped, so it is restart safe.
func SeedDemoAccounts(ctx context.Context, store SeederStore, hasher SeederHasher, log zerolog.Logger) {
	student := domain.StudentRegistration{
		Account: domain.Account{
			Email:     "student@example.com",
			Password:  "StudentPassword123!",
			FirstName: "Demo",
			LastName:  "Student",
			Gender:    domain.GenderFemale,
		},
		BirthDate: time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC),
		SportID:   "1",
	}
	trainer := domain.TrainerRegistration{
		Account: domain.Account{
			Email:     "trainer@example.com",
			Password:  "TrainerPassword123!",
			FirstName: "Demo",
			LastName:  "Trainer",
			Gender:    domain.GenderMale,
		},
	}

	seeded := 0
	for _, reg := range []domain.Registration{student, trainer} {
		acct := reg.Credentials()
		hash, err := hasher.Hash(ctx, acct.Password)
		if err != nil {
			log.Warn().Err(err).Str("email", acct.Email).Msg("seed hash failed")
			continue
		}

		switch r := reg.(type) {
		case domain.StudentRegistration:
			_, err = store.InsertStudent(ctx, r.Record(hash))
		case domain.TrainerRegistration:
			_, err = store.InsertTrainer(ctx, r.Record(hash))
		}
		if err != nil {
			// duplicates are expected on restart
			if !domain.Is(err, "email_already_exists") {
				log.Warn().Err(err).Str("email", acct.Email).Msg("seed insert failed")
			}
			continue
		}
		seeded++
	}

	log.Info().Int("seeded", seeded).Msg("demo accounts seeded")
}
