package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
)

// Year is the cohort label used to target assignments at a class.
type Year string

const (
	Year1 Year = "1st"
	Year2 Year = "2nd"
	Year3 Year = "3rd"
	Year4 Year = "4th"
)

var Years = []Year{Year1, Year2, Year3, Year4}

func (y Year) IsValid() bool {
	for _, yr := range Years {
		if y == yr {
			return true
		}
	}
	return false
}

// NormalizeYear repairs legacy year labels ("1".."4" and blanks) left over
// from before the enum was enforced. Valid labels pass through unchanged.
func NormalizeYear(v string) Year {
	switch v {
	case "", "1":
		return Year1
	case "2":
		return Year2
	case "3":
		return Year3
	case "4":
		return Year4
	}
	return Year(v)
}

type Student struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Year         Year      `json:"year" db:"year"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Year     string `json:"year" validate:"required,year"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ns.Name, ns.Email)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Year     string `json:"year" validate:"omitempty,year"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if email := core.CleanString(us.Email, true /* lower */); email != "" {
		us.Email = email
	} else {
		us.Email = orig.Email
	}
	if us.Year == "" {
		us.Year = string(orig.Year)
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckUniqueness(us.Name, us.Email, orig)
}
