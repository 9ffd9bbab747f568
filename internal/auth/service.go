package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dragpoint/geodrag/internal/typeid"
)

var ErrInvalidToken = errors.New("invalid token")

// RoomClaims grant one session access to one construction room.
type RoomClaims struct {
	Room string `json:"room"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TokenResult is returned to clients joining a room.
type TokenResult struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	Room      string    `json:"room"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Issue signs a token for a new session in room.
func (s *Service) Issue(room string) (*TokenResult, error) {
	if room == "" {
		return nil, errors.New("empty room")
	}
	now := s.now()
	exp := now.Add(s.ttl)
	claims := RoomClaims{
		Room: room,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   typeid.NewSessionID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &TokenResult{Token: signed, SessionID: claims.Subject, Room: room, ExpiresAt: exp.UTC().Truncate(time.Second)}, nil
}

// Validate checks a token's signature and expiry and that it was issued
// for room. It returns the session id.
func (s *Service) Validate(tokenString, room string) (string, error) {
	var claims RoomClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Room != room {
		return "", fmt.Errorf("%w: issued for room %q", ErrInvalidToken, claims.Room)
	}
	if err := typeid.Validate(claims.Subject, typeid.PrefixSession); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.Subject, nil
}
