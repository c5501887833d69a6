package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/contentforge/contentforge/internal/user"
	"github.com/contentforge/contentforge/pkg/cookie"
	"github.com/contentforge/contentforge/pkg/jwt"
)

// CookieName is the session cookie holding the signed token.
const CookieName = "token"

// Config holds token issuing settings. TokenTTL is the single source of
// truth for session lifetime: both the JWT expiry and the cookie max-age
// derive from it.
type Config struct {
	Secret   string        `env:"JWT_SECRET,required"`
	TokenTTL time.Duration `env:"JWT_TTL" envDefault:"72h"`
}

// UserResolver loads the account referenced by a verified token.
type UserResolver interface {
	ByID(ctx context.Context, id bson.ObjectID) (*user.User, error)
}

// Issuer signs, verifies and revokes session tokens.
type Issuer struct {
	tokens  *jwt.Service
	cookies *cookie.Manager
	users   UserResolver
	ttl     time.Duration
}

// NewIssuer constructs an Issuer. The cookie manager should carry the
// session defaults (http-only, SameSite=Strict).
func NewIssuer(cfg Config, cookies *cookie.Manager, users UserResolver) (*Issuer, error) {
	tokens, err := jwt.NewFromString(cfg.Secret)
	if err != nil {
		return nil, err
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 72 * time.Hour
	}
	return &Issuer{tokens: tokens, cookies: cookies, users: users, ttl: ttl}, nil
}

// Issue signs a token for u and sets it as the session cookie.
func (i *Issuer) Issue(w http.ResponseWriter, u *user.User) error {
	now := time.Now()
	token, err := i.tokens.Generate(jwt.StandardClaims{
		Subject:   u.ID.Hex(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(i.ttl).Unix(),
	})
	if err != nil {
		return err
	}

	i.cookies.Set(w, CookieName, token, cookie.WithMaxAge(int(i.ttl.Seconds())))
	return nil
}

// Verify authenticates the request's cookie and resolves its user. The
// returned record never carries the password hash.
func (i *Issuer) Verify(ctx context.Context, r *http.Request) (*user.User, error) {
	token, err := i.cookies.Get(r, CookieName)
	if err != nil {
		return nil, ErrNoToken
	}

	var claims jwt.StandardClaims
	if err := i.tokens.Parse(token, &claims); err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	id, err := bson.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := i.users.ByID(ctx, id)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u.Password = ""
	return u, nil
}

// Check reports whether the request carries a valid session, without
// resolving or attaching the user.
func (i *Issuer) Check(r *http.Request) bool {
	token, err := i.cookies.Get(r, CookieName)
	if err != nil {
		return false
	}
	var claims jwt.StandardClaims
	return i.tokens.Parse(token, &claims) == nil
}

// Revoke clears the session cookie.
func (i *Issuer) Revoke(w http.ResponseWriter) {
	i.cookies.Delete(w, CookieName)
}
