package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/refresh"
)

var errBackendDown = errors.New("backend down")

type failingStore struct {
	refresh.Store
	findErr   error
	redeemErr error
}

func (s failingStore) Find(ctx context.Context, token string) (*refresh.Record, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.Store.Find(ctx, token)
}

func (s failingStore) Redeem(ctx context.Context, token string) (bool, error) {
	if s.redeemErr != nil {
		return false, s.redeemErr
	}
	return s.Store.Redeem(ctx, token)
}

func testDeps(t *testing.T, store refresh.Store, now time.Time) (RefreshDeps, string, string) {
	t.Helper()

	manager, err := jwt.NewManager(jwt.Config{
		Secret:    []byte("0123456789abcdef0123456789abcdef"),
		AccessTTL: time.Minute,
		Now:       func() time.Time { return now.Add(-2 * time.Minute) },
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	access, jti, _, err := manager.Issue("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	record := &refresh.Record{
		Token:     "opaque-1",
		JWTID:     jti,
		UserID:    "user-1",
		IssuedAt:  now.Add(-2 * time.Minute),
		ExpiresAt: now.Add(24 * time.Hour),
	}
	if err := store.Create(context.Background(), record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deps := RefreshDeps{
		ParseAccess: manager.Parse,
		Store:       store,
		Now:         func() time.Time { return now },
		IssuePair: func(context.Context, string, string) (string, string, string, error) {
			return "new-access", "new-opaque", "new-jti", nil
		},
	}
	return deps, access, record.Token
}

func TestRunRefreshLedgerFaultIsError(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	deps, access, token := testDeps(t, refresh.NewMemoryStore(), now)
	deps.Store = failingStore{Store: deps.Store, findErr: errBackendDown}

	res := RunRefresh(context.Background(), access, token, deps)
	if !errors.Is(res.Err, errBackendDown) {
		t.Fatalf("expected backend error, got %v", res.Err)
	}
	if res.Rejected() {
		t.Fatalf("infrastructure fault must not carry reasons, got %v", res.Reasons)
	}
}

func TestRunRefreshRedeemRaceLoser(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := refresh.NewMemoryStore()
	deps, access, token := testDeps(t, store, now)

	// Spend the token between Find and Redeem by redeeming it out of band.
	won, err := store.Redeem(context.Background(), token)
	if err != nil || !won {
		t.Fatalf("setup redeem failed: won=%v err=%v", won, err)
	}

	res := RunRefresh(context.Background(), access, token, deps)
	if !res.Rejected() {
		t.Fatal("expected rejection for spent token")
	}
	if res.Reasons[0] != ReasonRefreshTokenUsed || !res.ReuseDetected {
		t.Fatalf("expected reuse rejection, got %+v", res)
	}
}

func TestRunRefreshIssuanceFailureAfterRedeemIsFatal(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := refresh.NewMemoryStore()
	deps, access, token := testDeps(t, store, now)
	deps.IssuePair = func(context.Context, string, string) (string, string, string, error) {
		return "", "", "", errBackendDown
	}

	res := RunRefresh(context.Background(), access, token, deps)
	if !errors.Is(res.Err, errBackendDown) {
		t.Fatalf("expected issuance error, got %v", res.Err)
	}

	// The record was redeemed before issuance failed; the token stays spent.
	rec, err := store.Find(context.Background(), token)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if !rec.Used {
		t.Fatal("expected the record to remain marked used")
	}
}

func TestReasonMessagesAreHuman(t *testing.T) {
	reasons := []Reason{
		ReasonParseError,
		ReasonSignatureInvalid,
		ReasonAlgorithmMismatch,
		ReasonAccessTokenNotExpired,
		ReasonRefreshTokenNotFound,
		ReasonRefreshTokenExpired,
		ReasonRefreshTokenUsed,
		ReasonRefreshTokenRevoked,
		ReasonTokenPairMismatch,
	}
	for _, r := range reasons {
		if r.Message() == string(r) {
			t.Fatalf("reason %q has no message", r)
		}
	}
}
