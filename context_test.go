package attendance

import (
	"context"
	"testing"
)

func TestWithSignerAccumulates(t *testing.T) {
	ctx := context.Background()
	ctx = WithSigner(ctx, "alice")
	ctx = WithSigner(ctx, "bob")

	auth := ContextAuthorizer{}
	if !auth.AuthorizedAs(ctx, "alice") {
		t.Fatal("expected alice to stay authorized after adding bob")
	}
	if !auth.AuthorizedAs(ctx, "bob") {
		t.Fatal("expected bob to be authorized")
	}
	if auth.AuthorizedAs(ctx, "carol") {
		t.Fatal("expected carol to be unauthorized")
	}
}

func TestContextAuthorizerEmptyInputs(t *testing.T) {
	auth := ContextAuthorizer{}

	if auth.AuthorizedAs(context.Background(), "alice") {
		t.Fatal("expected bare context to authorize nobody")
	}
	if auth.AuthorizedAs(WithSigner(context.Background(), "alice"), "") {
		t.Fatal("expected empty address to never be authorized")
	}
}
