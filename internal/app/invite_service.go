package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// ErrInvalidInvite is returned for tokens that fail signature, issuer or expiry checks.
var ErrInvalidInvite = errors.New("invalid invite token")

// DefaultInviteTTL is used when the service is built without a lifetime.
const DefaultInviteTTL = 24 * time.Hour

// InviteClaims is the content of a verified invite token.
type InviteClaims struct {
	ID      string
	MatchID string
	Creator string
	// Invitee is empty for an open invite that anyone holding the token may use.
	Invitee   string
	ExpiresAt time.Time
}

// InviteService signs and verifies HS256 tokens that let a player join a private table.
type InviteService struct {
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewInviteService(secret, issuer string, ttl time.Duration) *InviteService {
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	return &InviteService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate signs an invite to matchID issued by creator. An empty invitee makes the
// token usable by anyone.
func (s *InviteService) Generate(matchID, creator, invitee string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("invite service is nil")
	}
	if matchID == "" || creator == "" {
		return "", fmt.Errorf("match id and creator are required")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("invite config is incomplete")
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"sub":  invitee,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
		"jti":  uuid.NewString(),
		"mid":  matchID,
		"from": creator,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify checks the signature, issuer and expiry of tokenString.
func (s *InviteService) Verify(tokenString string) (InviteClaims, error) {
	if s == nil || s.secret == "" {
		return InviteClaims{}, fmt.Errorf("invite config is incomplete")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return InviteClaims{}, fmt.Errorf("%w: %v", ErrInvalidInvite, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return InviteClaims{}, ErrInvalidInvite
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return InviteClaims{}, fmt.Errorf("%w: unexpected issuer", ErrInvalidInvite)
	}

	out := InviteClaims{
		ID:      stringClaim(claims, "jti"),
		MatchID: stringClaim(claims, "mid"),
		Creator: stringClaim(claims, "from"),
		Invitee: stringClaim(claims, "sub"),
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if out.MatchID == "" {
		return InviteClaims{}, fmt.Errorf("%w: missing match id", ErrInvalidInvite)
	}
	return out, nil
}

// Admits reports whether the verified invite lets userID join.
func (c InviteClaims) Admits(userID string) bool {
	return c.Invitee == "" || c.Invitee == userID
}

func stringClaim(claims jwt.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return s
}
