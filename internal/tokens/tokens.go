package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers bad signatures, malformed tokens and expired tokens
// alike.
var ErrInvalidToken = errors.New("invalid token")

type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Now           func() time.Time
}

type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// Codec signs and verifies HS256 access and refresh tokens. Each kind has its
// own secret.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

func NewCodec(cfg Config) *Codec {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Codec{
		accessSecret:  cfg.AccessSecret,
		refreshSecret: cfg.RefreshSecret,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           now,
	}
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

func (c *Codec) IssueAccessToken(s Subject) (Issued, error) {
	issuedAt := c.now()
	accessExp := issuedAt.Add(c.accessTTL)
	accessClaims := AccessClaims{
		Role:     s.Role,
		Email:    s.Email,
		Username: s.Username,
		Type:     KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   s.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(c.accessSecret)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: accessToken, ExpiresAt: accessExp}, nil
}

func (c *Codec) IssueRefreshToken(s Subject) (Issued, error) {
	issuedAt := c.now()
	refreshExp := issuedAt.Add(c.refreshTTL)
	refreshClaims := RefreshClaims{
		Type: KindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   s.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
			ID:        uuid.NewString(),
		},
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(c.refreshSecret)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: refreshToken, ExpiresAt: refreshExp}, nil
}

func (c *Codec) VerifyAccessToken(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := c.parse(tokenStr, &claims, c.accessSecret); err != nil {
		return nil, err
	}
	if claims.Type != KindAccess || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (c *Codec) VerifyRefreshToken(tokenStr string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := c.parse(tokenStr, &claims, c.refreshSecret); err != nil {
		return nil, err
	}
	if claims.Type != KindRefresh || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (c *Codec) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	if tokenStr == "" {
		return ErrInvalidToken
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil || !tkn.Valid {
		return ErrInvalidToken
	}
	return nil
}
