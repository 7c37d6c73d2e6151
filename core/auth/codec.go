package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/student"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("invalid token")
)

// Codec signs and verifies compact, expiring identity tokens.
// The signing secret and TTLs are injected once at construction;
// nothing in here reads ambient state.
type Codec struct {
	secret        []byte
	ttl           time.Duration
	refreshWindow time.Duration
	issuer        string
}

func NewCodec(secret, issuer string, ttl, refreshWindow time.Duration) *Codec {
	return &Codec{
		secret:        []byte(secret),
		ttl:           ttl,
		refreshWindow: refreshWindow,
		issuer:        issuer,
	}
}

// SignStudent mints a fresh student token.
func (c *Codec) SignStudent(st student.Student) (string, error) {
	return c.Sign(&Claims{
		Name: st.Name,
		Year: st.Year,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: st.ID,
		},
	})
}

// SignAdmin mints a fresh admin token.
func (c *Codec) SignAdmin(admin AdminIdentity) (string, error) {
	return c.Sign(&Claims{
		Name:    admin.Name,
		IsAdmin: true,
	})
}

// Sign stamps the claims with issuance/expiry timestamps and signs them.
func (c *Codec) Sign(claims *Claims) (string, error) {
	now := NowFunc()
	claims.Issuer = c.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return token, nil
}

// Verify decodes and checks a token, failing with ErrTokenExpired when the
// signature is valid but the expiry has passed, and ErrTokenMalformed when
// the signature or structure is bad.
func (c *Codec) Verify(token string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return NowFunc() }),
		jwt.WithExpirationRequired(),
	)

	claims := new(Claims)
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// MaybeRefresh mints a replacement token preserving the claim shape when the
// presented claims are within the refresh window of their expiry. It returns
// "" when no replacement is warranted. The original claims stay valid until
// their own expiry; there is no server-side revocation.
func (c *Codec) MaybeRefresh(claims *Claims) (string, error) {
	if claims.ExpiresAt == nil {
		return "", nil
	}
	if claims.ExpiresAt.Sub(NowFunc()) >= c.refreshWindow {
		return "", nil
	}
	return c.Sign(&Claims{
		Name:    claims.Name,
		Year:    claims.Year,
		IsAdmin: claims.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: claims.Subject,
		},
	})
}
