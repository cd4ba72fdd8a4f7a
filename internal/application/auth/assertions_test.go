package auth

import (
	"testing"
	"time"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}

func studentReg(email string) domain.StudentRegistration {
	return domain.StudentRegistration{
		Account: domain.Account{
			Email:     email,
			Password:  "pw-anna-1",
			FirstName: "Anna",
			LastName:  "Ivanova",
			Gender:    domain.GenderFemale,
		},
		BirthDate: time.Date(2004, 5, 17, 0, 0, 0, 0, time.UTC),
		SportID:   "3",
	}
}

func trainerReg(email string) domain.TrainerRegistration {
	return domain.TrainerRegistration{
		Account: domain.Account{
			Email:     email,
			Password:  "pw-trainer",
			FirstName: "Oleg",
			LastName:  "Petrov",
			Gender:    domain.GenderMale,
		},
	}
}
