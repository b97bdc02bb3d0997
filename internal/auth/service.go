package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/apperr"
)

// ErrInvalidToken is returned when an access token is missing, malformed,
// expired, or signed with the wrong key.
var ErrInvalidToken = apperr.WithCode(apperr.Unauthorized, "UNAUTHORIZED", "Invalid or expired access token")

// ProfileEnsurer creates the profile row of an identity seen for the first time.
type ProfileEnsurer interface {
	Ensure(ctx context.Context, id uuid.UUID, email string) error
}

// Options configures token verification.
type Options struct {
	Secret   string
	Issuer   string
	Audience string
}

// Service verifies access tokens issued by the identity provider and
// resolves them to an Identity.
type Service struct {
	secret   []byte
	parser   *jwt.Parser
	profiles ProfileEnsurer
}

// NewService creates a new auth Service. Tokens must be HS256-signed with
// the shared secret; issuer and audience are checked when configured.
func NewService(opts Options, profiles ProfileEnsurer) *Service {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}

	return &Service{
		secret:   []byte(opts.Secret),
		parser:   jwt.NewParser(parserOpts...),
		profiles: profiles,
	}
}

// Authenticate verifies the raw bearer token and makes sure a profile exists
// for its subject.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*Identity, error) {
	if rawToken == "" {
		return nil, ErrInvalidToken
	}

	var claims Claims
	_, err := s.parser.ParseWithClaims(rawToken, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		slog.Debug("rejected access token", "error", err)
		return nil, ErrInvalidToken
	}

	profileID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if err := s.profiles.Ensure(ctx, profileID, claims.Email); err != nil {
		return nil, fmt.Errorf("ensuring profile: %w", err)
	}

	return &Identity{ProfileID: profileID, Email: claims.Email}, nil
}
