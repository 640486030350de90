// Package token implements the signed access token codec: encoding a
// verified identity into a compact HMAC-signed JWT, and decoding a token
// string back into an identity or a typed error.
//
// Wire contract of the claim set: {sub, auth, iat, exp}, where auth is the
// comma-joined authority list. Any consumer of these tokens must use the
// identical secret and algorithm.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/tokengate-dev/tokengate/pkg/auth"
)

// authoritiesClaim is the claim key carrying the comma-joined authority list.
const authoritiesClaim = "auth"

// MinSecretLen is the minimum signing secret length in bytes. HS256 needs a
// key of at least the hash output size (256 bits).
const MinSecretLen = 32

// Typed decode failures. All three are treated as "unauthenticated" by the
// middleware; the distinction exists for logging and metrics only, and must
// never reach a client response.
var (
	ErrBadSignature = errors.New("token signature invalid")
	ErrExpired      = errors.New("token expired")
	ErrMalformed    = errors.New("token malformed")
)

// Provider issues and decodes signed access tokens. The secret is fixed at
// construction and never mutated, so a single Provider is safe for
// concurrent use without synchronization.
type Provider struct {
	secret   []byte
	validity time.Duration

	// now is the clock used for iat/exp; overridable in tests.
	now func() time.Time
}

// NewProvider creates a token provider. A secret shorter than MinSecretLen
// or a non-positive validity is a configuration error: the caller must
// abort startup rather than continue with a weak key.
func NewProvider(secret string, validity time.Duration) (*Provider, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("signing secret must be at least %d bytes, got %d", MinSecretLen, len(secret))
	}
	if validity <= 0 {
		return nil, fmt.Errorf("token validity must be positive, got %s", validity)
	}
	return &Provider{
		secret:   []byte(secret),
		validity: validity,
		now:      time.Now,
	}, nil
}

// Issue encodes the identity into a signed compact token. The expiry is
// issued-at plus the configured validity; timestamps are truncated to
// seconds by the JWT NumericDate encoding.
func (p *Provider) Issue(id *auth.Identity) (string, error) {
	if id == nil || id.Subject == "" {
		return "", fmt.Errorf("identity with non-empty subject required")
	}

	now := p.now()
	claims := jwtlib.MapClaims{
		"sub":            id.Subject,
		authoritiesClaim: strings.Join(id.Authorities, ","),
		"iat":            jwtlib.NewNumericDate(now),
		"exp":            jwtlib.NewNumericDate(now.Add(p.validity)),
	}

	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := tok.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Decode verifies the token string and reconstructs the identity it carries.
// The signature is checked before any claim is trusted; expiry is checked
// strictly, with no clock-skew leeway. Failures map to exactly one of
// ErrBadSignature, ErrExpired, or ErrMalformed.
func (p *Provider) Decode(tokenString string) (*auth.Identity, error) {
	tok, err := jwtlib.Parse(tokenString,
		func(t *jwtlib.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return p.secret, nil
		},
		jwtlib.WithValidMethods([]string{"HS256"}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := tok.Claims.(jwtlib.MapClaims)
	if !ok || !tok.Valid {
		return nil, ErrMalformed
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, ErrMalformed
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrMalformed
	}

	return &auth.Identity{
		Subject:     subject,
		Authorities: splitAuthorities(claims),
		ExpiresAt:   exp.Time,
	}, nil
}

// Validity returns the configured token lifetime.
func (p *Provider) Validity() time.Duration {
	return p.validity
}

// classify maps golang-jwt parse errors onto the typed failure taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
		return ErrBadSignature
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return ErrExpired
	default:
		// Structural problems, bad algorithm, missing exp, and anything
		// else that is not a signature or expiry failure.
		return ErrMalformed
	}
}

// splitAuthorities splits the comma-joined authorities claim back into a
// list, dropping empty entries.
func splitAuthorities(claims jwtlib.MapClaims) []string {
	raw, ok := claims[authoritiesClaim].(string)
	if !ok || raw == "" {
		return nil
	}
	var authorities []string
	for _, a := range strings.Split(raw, ",") {
		if a != "" {
			authorities = append(authorities, a)
		}
	}
	return authorities
}
