package dto

import (
	"strings"
	"time"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
)

const birthDateLayout = "2006-01-02"

// RegisterRequest is the body of POST /register. Student-only fields are
// ignored for trainers.
type RegisterRequest struct {
	Role       string `json:"role"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Password   string `json:"password" validate:"required,max=72"`
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	MiddleName string `json:"middle_name" validate:"max=100"`
	Gender     string `json:"gender" validate:"required,oneof=M F"`

	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	SportID   string `json:"sport_id" validate:"max=64"`
	InTeam    bool   `json:"in_team"`
	TeamID    string `json:"team_id" validate:"max=64"`
}

func (r *RegisterRequest) normalize() {
	r.Role = strings.TrimSpace(r.Role)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.MiddleName = strings.TrimSpace(r.MiddleName)
	r.Gender = strings.TrimSpace(r.Gender)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.SportID = strings.TrimSpace(r.SportID)
	r.TeamID = strings.TrimSpace(r.TeamID)
}

// ToRegistration parses the role once and returns the matching variant.
// Field checks that depend on the role are left to the variant's Validate.
func (r *RegisterRequest) ToRegistration() (domain.Registration, error) {
	r.normalize()

	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(r); err != nil {
		return nil, err
	}

	acct := domain.Account{
		Email:      r.Email,
		Password:   r.Password,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		MiddleName: r.MiddleName,
		Gender:     domain.Gender(r.Gender),
	}

	if role == domain.RoleTrainer {
		return domain.TrainerRegistration{Account: acct}, nil
	}

	var birth time.Time
	if r.BirthDate != "" {
		birth, err = time.Parse(birthDateLayout, r.BirthDate)
		if err != nil {
			return nil, domain.ErrInvalidField("birth_date", "must be YYYY-MM-DD")
		}
	}

	teamID := r.TeamID
	if !r.InTeam {
		teamID = ""
	}

	return domain.StudentRegistration{
		Account:   acct,
		BirthDate: birth,
		SportID:   r.SportID,
		InTeam:    r.InTeam,
		TeamID:    teamID,
	}, nil
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}
