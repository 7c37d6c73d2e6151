package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/student"
)

var (
	// ErrAmbiguousClaims marks a well-formed token whose payload fits neither
	// valid shape exclusively (eg. a subject id combined with the admin flag).
	ErrAmbiguousClaims = errors.New("ambiguous claims shape")
)

// Claims is the decoded payload of an access token. A valid token is either
// a student token (subject id set, admin flag unset) or an admin token
// (admin flag set, no subject id, name equal to the configured admin name).
// Identity narrows a Claims value into exactly one of those shapes.
type Claims struct {
	Name    string       `json:"name,omitempty"`
	Year    student.Year `json:"year,omitempty"`
	IsAdmin bool         `json:"isAdmin,omitempty"`
	jwt.RegisteredClaims
}

type (
	// Identity is the verified caller attached to a request: exactly one of
	// StudentIdentity or AdminIdentity.
	Identity interface {
		identity()
	}

	StudentIdentity struct {
		ID   string
		Name string
		Year student.Year
	}

	// AdminIdentity is the single administrator of the system, defined by
	// configuration at startup rather than by a stored record.
	AdminIdentity struct {
		Name string
	}
)

func (StudentIdentity) identity() {}
func (AdminIdentity) identity()   {}

// Identity narrows the claims into a tagged identity, failing with
// ErrAmbiguousClaims when the payload satisfies neither shape exclusively.
func (c *Claims) Identity() (Identity, error) {
	switch {
	case !c.IsAdmin && c.Subject != "":
		return StudentIdentity{ID: c.Subject, Name: c.Name, Year: c.Year}, nil
	case c.IsAdmin && c.Subject == "":
		return AdminIdentity{Name: c.Name}, nil
	}
	return nil, ErrAmbiguousClaims
}
