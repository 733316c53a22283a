package attendance

import "context"

type signerContextKey struct{}

// WithSigner attaches a verified signer address to ctx. The default
// [ContextAuthorizer] treats attached signers as proven: callers must only
// attach addresses that an outer layer has actually verified. Multiple
// signers accumulate, matching transactions signed by more than one party.
func WithSigner(ctx context.Context, addr string) context.Context {
	if addr == "" {
		return ctx
	}

	existing := signersFromContext(ctx)
	signers := make([]string, 0, len(existing)+1)
	signers = append(signers, existing...)
	signers = append(signers, addr)

	return context.WithValue(ctx, signerContextKey{}, signers)
}

func signersFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}

	signers, _ := ctx.Value(signerContextKey{}).([]string)
	return signers
}
