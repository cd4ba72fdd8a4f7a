package domain

import (
	"strings"
	"time"
)

// User is a stored account from either partition. Role is implied by the
// partition the record was found in.
type User struct {
	ID           string
	Role         Role
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	MiddleName   string
	Gender       Gender
}

// Claims is the identity carried inside access and refresh tokens.
type Claims struct {
	UserID    string
	Email     string
	FirstName string
	Role      Role
}

func (u User) Claims() Claims {
	return Claims{UserID: u.ID, Email: u.Email, FirstName: u.FirstName, Role: u.Role}
}

// NormalizeEmail trims surrounding whitespace. Matching is otherwise exact and
// case-sensitive.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// Account holds the fields shared by every registration variant.
type Account struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	MiddleName string
	Gender     Gender
}

// Profile is the non-secret part of an account as written to storage.
type Profile struct {
	Email      string
	FirstName  string
	LastName   string
	MiddleName string
	Gender     Gender
}

func (a Account) normalized() Account {
	a.Email = NormalizeEmail(a.Email)
	a.FirstName = strings.TrimSpace(a.FirstName)
	a.LastName = strings.TrimSpace(a.LastName)
	a.MiddleName = strings.TrimSpace(a.MiddleName)
	return a
}

func (a Account) validate() error {
	if a.Email == "" {
		return ErrMissingField("email")
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidField("email", "must be a valid email address")
	}
	if a.Password == "" {
		return ErrMissingField("password")
	}
	if a.FirstName == "" {
		return ErrMissingField("first_name")
	}
	if a.LastName == "" {
		return ErrMissingField("last_name")
	}
	if a.Gender == "" {
		return ErrMissingField("gender")
	}
	if !IsValidGender(string(a.Gender)) {
		return ErrInvalidField("gender", `must be "M" or "F"`)
	}
	return nil
}

func (a Account) profile() Profile {
	return Profile{
		Email:      a.Email,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		MiddleName: a.MiddleName,
		Gender:     a.Gender,
	}
}

// Registration is the tagged variant accepted by the register flow.
// Implementations: StudentRegistration, TrainerRegistration.
type Registration interface {
	Role() Role
	Credentials() Account
	// Normalize returns a copy with whitespace trimmed from text fields.
	Normalize() Registration
	Validate() error
}

type StudentRegistration struct {
	Account
	BirthDate time.Time
	SportID   string
	InTeam    bool
	TeamID    string // optional
}

func (StudentRegistration) Role() Role { return RoleStudent }

func (r StudentRegistration) Credentials() Account { return r.Account }

func (r StudentRegistration) Normalize() Registration {
	r.Account = r.Account.normalized()
	r.SportID = strings.TrimSpace(r.SportID)
	r.TeamID = strings.TrimSpace(r.TeamID)
	return r
}

func (r StudentRegistration) Validate() error {
	if err := r.Account.validate(); err != nil {
		return err
	}
	if r.BirthDate.IsZero() {
		return ErrMissingField("birth_date")
	}
	if r.BirthDate.After(time.Now()) {
		return ErrInvalidField("birth_date", "must be in the past")
	}
	if r.SportID == "" {
		return ErrMissingField("sport_id")
	}
	return nil
}

// Record builds the row to persist once the password has been hashed.
func (r StudentRegistration) Record(passwordHash string) NewStudent {
	return NewStudent{
		Profile:      r.Account.profile(),
		PasswordHash: passwordHash,
		BirthDate:    r.BirthDate,
		SportID:      r.SportID,
		InTeam:       r.InTeam,
		TeamID:       r.TeamID,
	}
}

type TrainerRegistration struct {
	Account
}

func (TrainerRegistration) Role() Role { return RoleTrainer }

func (r TrainerRegistration) Credentials() Account { return r.Account }

func (r TrainerRegistration) Normalize() Registration {
	r.Account = r.Account.normalized()
	return r
}

func (r TrainerRegistration) Validate() error {
	return r.Account.validate()
}

func (r TrainerRegistration) Record(passwordHash string) NewTrainer {
	return NewTrainer{Profile: r.Account.profile(), PasswordHash: passwordHash}
}

// NewStudent is a student row ready for insertion.
type NewStudent struct {
	Profile
	PasswordHash string
	BirthDate    time.Time
	SportID      string
	InTeam       bool
	TeamID       string
}

// NewTrainer is a trainer row ready for insertion.
type NewTrainer struct {
	Profile
	PasswordHash string
}
