package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"greenia/internal/interfaces"
	"greenia/internal/models"
)

var (
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrSessionRevoked = errors.New("session revoked")
)

type sessionClaims struct {
	Role    models.Role `json:"role"`
	AdminID string      `json:"admin_id,omitempty"`
	Email   string      `json:"email"`
	Name    string      `json:"name"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and verifies HS256 access tokens. The revocation store is
// optional; without it logout only forgets the token on the client.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	store  interfaces.SessionStore
	now    func() time.Time
}

func NewSessionIssuer(secret string, ttl time.Duration, store interfaces.SessionStore) *SessionIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionIssuer) TTL() time.Duration { return s.ttl }

// Issue returns a signed token for p.
func (s *SessionIssuer) Issue(p models.Principal) (string, *models.Session, error) {
	now := s.now()
	sess := &models.Session{
		Principal: p,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(s.ttl).Truncate(time.Second),
	}
	claims := sessionClaims{
		Role:    p.Role,
		AdminID: p.AdminID,
		Email:   p.Email,
		Name:    p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ID:        sess.TokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, sess, nil
}

// Parse verifies the signature and expiry of token and checks the revocation store.
func (s *SessionIssuer) Parse(ctx context.Context, token string) (*models.Session, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30*time.Second),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Subject == "" || claims.ID == "" || !claims.Role.Valid() || claims.ExpiresAt == nil {
		return nil, ErrInvalidSession
	}

	if s.store != nil {
		revoked, err := s.store.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrSessionRevoked
		}
	}

	return &models.Session{
		Principal: models.Principal{
			ID:      claims.Subject,
			Role:    claims.Role,
			AdminID: claims.AdminID,
			Name:    claims.Name,
			Email:   claims.Email,
		},
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke blacklists the session's token id until it would have expired anyway.
func (s *SessionIssuer) Revoke(ctx context.Context, sess *models.Session) error {
	if s.store == nil {
		log.Warn().Str("token_id", sess.TokenID).Msg("No session store configured, token stays valid until expiry")
		return nil
	}
	return s.store.Revoke(ctx, sess.TokenID, sess.ExpiresAt)
}
