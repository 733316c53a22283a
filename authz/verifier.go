package authz

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the proof token signature algorithm.
type SigningMethod string

const (
	// MethodEd25519 signs proofs with Ed25519 keys.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs proofs with an HMAC-SHA256 shared secret.
	MethodHS256 SigningMethod = "hs256"
)

// Config configures a [Verifier]. Treat it as immutable after construction.
type Config struct {
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
	ProofTTL      time.Duration
}

// Claims is the proof token payload. Addr is the address the bearer proved
// control of.
type Claims struct {
	Addr string `json:"addr"`
	jwt.RegisteredClaims
}

// Verifier mints and verifies address proof tokens.
type Verifier struct {
	config Config
}

// NewVerifier validates cfg and returns a ready [Verifier].
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.ProofTTL <= 0 {
		return nil, errors.New("invalid proof TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Verifier{config: cfg}, nil
}

// MintProof issues a signed proof token for addr, valid for the configured
// ProofTTL. It requires the private key; verify-only deployments cannot
// mint.
func (v *Verifier) MintProof(addr string) (string, error) {
	if addr == "" {
		return "", errors.New("empty address")
	}
	if len(v.config.PrivateKey) == 0 {
		return "", errors.New("verifier has no signing key")
	}

	now := time.Now()
	claims := Claims{
		Addr: addr,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.config.ProofTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    v.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(v.getMethod(), claims)

	signKey, err := v.getSignKey()
	if err != nil {
		return "", err
	}
	return token.SignedString(signKey)
}

// VerifyProof checks the token's signature, expiry, and issuer and returns
// the proven address.
func (v *Verifier) VerifyProof(tokenStr string) (string, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{v.getMethod().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(v.config.Leeway))
	}
	if v.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != v.getMethod().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return v.getVerifyKey()
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	if claims.Addr == "" {
		return "", errors.New("proof missing address claim")
	}

	return claims.Addr, nil
}

func (v *Verifier) getMethod() jwt.SigningMethod {
	switch v.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (v *Verifier) getSignKey() (interface{}, error) {
	switch v.config.SigningMethod {
	case MethodHS256:
		return v.config.PrivateKey, nil
	default:
		return parseEdPrivateKey(v.config.PrivateKey)
	}
}

func (v *Verifier) getVerifyKey() (interface{}, error) {
	switch v.config.SigningMethod {
	case MethodHS256:
		return v.config.PrivateKey, nil
	default:
		return parseEdPublicKey(v.config.PublicKey)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
