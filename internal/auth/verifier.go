// ABOUTME: Bearer token verification against stored API key hashes
// ABOUTME: Resolves the caller and records last use in the background

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/2389/promptmesh-gateway/internal/store"
)

// ErrUnauthenticated is the only error Authenticate returns. The cause is
// logged, never surfaced to the caller.
var ErrUnauthenticated = errors.New("invalid or missing API key")

// Attempt outcomes reported to an AttemptRecorder.
const (
	ResultSuccess = "success"
	ResultMissing = "missing"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// DefaultTouchTimeout bounds the background last-used update.
const DefaultTouchTimeout = 5 * time.Second

// AttemptRecorder observes authentication outcomes.
type AttemptRecorder interface {
	RecordAuthAttempt(result string)
}

// VerifierConfig configures a Verifier.
type VerifierConfig struct {
	Keys         store.APIKeyStore
	Logger       *slog.Logger
	TouchTimeout time.Duration
	Recorder     AttemptRecorder // optional

	// Now is used for last-used timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Verifier authenticates bearer tokens.
type Verifier struct {
	keys         store.APIKeyStore
	logger       *slog.Logger
	touchTimeout time.Duration
	recorder     AttemptRecorder
	now          func() time.Time

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewVerifier creates a Verifier.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	if cfg.Keys == nil {
		return nil, fmt.Errorf("key store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.TouchTimeout <= 0 {
		cfg.TouchTimeout = DefaultTouchTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Verifier{
		keys:         cfg.Keys,
		logger:       cfg.Logger.With("component", "auth"),
		touchTimeout: cfg.TouchTimeout,
		recorder:     cfg.Recorder,
		now:          cfg.Now,
	}, nil
}

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// Authenticate resolves the principal for an Authorization header value.
// Every failure, including a store outage, returns ErrUnauthenticated.
func (v *Verifier) Authenticate(ctx context.Context, authHeader string) (Principal, error) {
	token, reason := extractBearerToken(authHeader)
	if reason != "" {
		v.record(ResultMissing)
		v.logger.Debug("rejecting request", "reason", reason)
		return Principal{}, ErrUnauthenticated
	}

	hash := HashToken(token)
	key, err := v.keys.GetActiveAPIKeyByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			v.record(ResultInvalid)
			v.logger.Debug("unknown or revoked api key", "prefix", DisplayPrefix(token))
		} else {
			v.record(ResultError)
			v.logger.Error("api key lookup failed", "error", err)
		}
		return Principal{}, ErrUnauthenticated
	}

	v.record(ResultSuccess)
	v.touch(ctx, key.ID, hash)

	return Principal{
		UserID:         key.UserID,
		OrganizationID: key.OrganizationID,
		KeyID:          key.ID,
	}, nil
}

// touch records last use without blocking the caller. The update outlives
// request cancellation but is bounded by touchTimeout.
func (v *Verifier) touch(ctx context.Context, keyID, hash string) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.wg.Add(1)
	v.mu.Unlock()

	at := v.now()
	go func() {
		defer v.wg.Done()

		tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.touchTimeout)
		defer cancel()

		if err := v.keys.TouchAPIKey(tctx, hash, at); err != nil {
			v.logger.Warn("failed to update api key last used", "key_id", keyID, "error", err)
		}
	}()
}

func (v *Verifier) record(result string) {
	if v.recorder != nil {
		v.recorder.RecordAuthAttempt(result)
	}
}

// Close stops scheduling new last-used updates and waits for in-flight ones.
func (v *Verifier) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.wg.Wait()
}
