package middleware

import (
	"net/http"
	"strings"

	attendance "github.com/mzahmi/attendance"
	"github.com/mzahmi/attendance/authz"
)

// Signer returns middleware that verifies the request's bearer proof token
// and attaches the proven address to the request context as a signer.
// Requests without a valid proof pass through unauthenticated when required
// is false, and are rejected with 401 when it is true.
func Signer(verifier *authz.Verifier, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				if required {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			addr, err := verifier.VerifyProof(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := attendance.WithSigner(r.Context(), addr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSigner is [Signer] with a mandatory proof.
func RequireSigner(verifier *authz.Verifier) func(http.Handler) http.Handler {
	return Signer(verifier, true)
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
