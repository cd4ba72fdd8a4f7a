package domain

type Role string

const (
	// Student accounts carry sport/team enrolment data.
	RoleStudent Role = "student"
	// Trainer accounts carry only the shared account fields.
	RoleTrainer Role = "trainer"
)

func IsValidRole(r string) bool {
	return r == string(RoleStudent) || r == string(RoleTrainer)
}

// ParseRole converts the wire value into a Role exactly once at the boundary.
func ParseRole(r string) (Role, error) {
	if !IsValidRole(r) {
		return "", ErrInvalidRole(r)
	}
	return Role(r), nil
}

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

func IsValidGender(g string) bool {
	return g == string(GenderMale) || g == string(GenderFemale)
}
