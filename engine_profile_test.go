package attendance

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSetProfileAndGetProfile(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig())
	ctx := context.Background()

	if err := engine.SetProfile(WithSigner(ctx, "alice"), "alice", "wonderland"); err != nil {
		t.Fatalf("SetProfile: %v", err)
	}

	profile, err := engine.GetProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile == nil {
		t.Fatal("expected a profile")
	}
	if profile.Nickname != "wonderland" {
		t.Fatalf("expected nickname wonderland, got %q", profile.Nickname)
	}
	if profile.RegisteredAt == 0 {
		t.Fatal("expected RegisteredAt to be set")
	}
}

func TestGetProfileAbsentReturnsNil(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig())

	profile, err := engine.GetProfile(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile != nil {
		t.Fatalf("expected nil profile, got %+v", profile)
	}
}

func TestSetProfileNicknameLengthBounds(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig())
	aliceCtx := WithSigner(context.Background(), "alice")

	cases := []struct {
		name     string
		nickname string
		wantErr  bool
	}{
		{"too short", "ab", true},
		{"min length", "abc", false},
		{"max length", strings.Repeat("x", 32), false},
		{"too long", strings.Repeat("x", 33), true},
		{"empty", "", true},
		// Multibyte characters count as code points, not bytes.
		{"multibyte min", "日本語", false},
		{"multibyte max", strings.Repeat("語", 32), false},
		{"multibyte too long", strings.Repeat("語", 33), true},
	}

	for _, tc := range cases {
		err := engine.SetProfile(aliceCtx, "alice", tc.nickname)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidNickname) {
				t.Fatalf("%s: expected ErrInvalidNickname, got %v", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestSetProfileRequiresOwnerProof(t *testing.T) {
	engine, _ := newInitializedEngine(t)
	ctx := context.Background()

	if err := engine.SetProfile(ctx, "alice", "wonderland"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without proof, got %v", err)
	}
	if err := engine.SetProfile(WithSigner(ctx, "bob"), "alice", "imposter"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for third party, got %v", err)
	}
	// Admin authority does not extend to user profiles.
	if err := engine.SetProfile(WithSigner(ctx, "admin-1"), "alice", "adminpick"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for admin, got %v", err)
	}

	if profile, err := engine.GetProfile(ctx, "alice"); err != nil || profile != nil {
		t.Fatalf("rejected writes must not create a profile: %+v err=%v", profile, err)
	}
}

func TestSetProfileWorksWithoutInitialization(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig())

	err := engine.SetProfile(WithSigner(context.Background(), "alice"), "alice", "early-bird")
	if err != nil {
		t.Fatalf("expected profile writes independent of ledger state, got %v", err)
	}
}

func TestSetProfileOverwriteUpdatesTimestamp(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig())
	aliceCtx := WithSigner(context.Background(), "alice")

	if err := engine.SetProfile(aliceCtx, "alice", "first-name"); err != nil {
		t.Fatalf("first SetProfile: %v", err)
	}
	first, err := engine.GetProfile(context.Background(), "alice")
	if err != nil || first == nil {
		t.Fatalf("GetProfile: %+v err=%v", first, err)
	}

	time.Sleep(1100 * time.Millisecond)

	if err := engine.SetProfile(aliceCtx, "alice", "second-name"); err != nil {
		t.Fatalf("second SetProfile: %v", err)
	}
	second, err := engine.GetProfile(context.Background(), "alice")
	if err != nil || second == nil {
		t.Fatalf("GetProfile: %+v err=%v", second, err)
	}

	if second.Nickname != "second-name" {
		t.Fatalf("expected overwrite, got %q", second.Nickname)
	}
	if second.RegisteredAt <= first.RegisteredAt {
		t.Fatalf("expected RegisteredAt to advance: %d -> %d", first.RegisteredAt, second.RegisteredAt)
	}
}

func TestProfileExpiresAfterTTL(t *testing.T) {
	cfg := engineTestConfig()
	cfg.Ledger.ProfileTTL = time.Minute
	engine, mr := newTestEngine(t, cfg)
	ctx := context.Background()

	if err := engine.SetProfile(WithSigner(ctx, "alice"), "alice", "short-lived"); err != nil {
		t.Fatalf("SetProfile: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	profile, err := engine.GetProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile != nil {
		t.Fatalf("expected expired profile, got %+v", profile)
	}
}

func TestRegisterRefreshesProfileTTL(t *testing.T) {
	cfg := engineTestConfig()
	cfg.Ledger.ProfileTTL = time.Minute
	engine, mr := newTestEngine(t, cfg)
	ctx := context.Background()

	if err := engine.Initialize(ctx, "admin-1"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	hash, _ := NewSessionHash()
	if err := engine.SetHash(WithSigner(ctx, "admin-1"), hash); err != nil {
		t.Fatalf("SetHash: %v", err)
	}
	if err := engine.SetProfile(WithSigner(ctx, "alice"), "alice", "persistent"); err != nil {
		t.Fatalf("SetProfile: %v", err)
	}

	// Registration inside the window keeps the profile alive past its
	// original deadline.
	mr.FastForward(40 * time.Second)
	if err := engine.Register(WithSigner(ctx, "alice"), "alice", hash); err != nil {
		t.Fatalf("Register: %v", err)
	}
	mr.FastForward(40 * time.Second)

	profile, err := engine.GetProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile == nil {
		t.Fatal("expected profile refreshed by registration to survive")
	}
}
