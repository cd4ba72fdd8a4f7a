package postgres

import "github.com/baechuer/sports-portal/services/auth-service/internal/domain"

// userRow is the column set shared by the students and trainers tables.
type userRow struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	MiddleName   string
	Gender       string
}

func (ur userRow) toDomain(role domain.Role) domain.User {
	return domain.User{
		ID:           ur.ID,
		Role:         role,
		Email:        ur.Email,
		PasswordHash: ur.PasswordHash,
		FirstName:    ur.FirstName,
		LastName:     ur.LastName,
		MiddleName:   ur.MiddleName,
		Gender:       domain.Gender(ur.Gender),
	}
}
