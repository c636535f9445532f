package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-pim-sync/internal/crypto"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/store"
	"github.com/MKhiriev/go-pim-sync/models"
)

const (
	// MaxTrustedPeers caps the remembered credential list. The oldest entry
	// is dropped first.
	MaxTrustedPeers = 10

	// LockoutDenials denials inside LockoutWindow stop further prompting.
	LockoutDenials = 3
	LockoutWindow  = 600 * time.Second

	// LegacyNoticeInterval rate limits the notice about peers that present
	// no usable credential.
	LegacyNoticeInterval = 10 * time.Minute
)

// authService is the concrete implementation of Authenticator.
type authService struct {
	passwords store.PasswordRepository
	hasher    crypto.CredentialHasher
	prompter  Prompter

	// anchors, when set, are forgotten on Revoke.
	anchors store.AnchorRepository

	// promptTimeout bounds one Prompter.Confirm call. Zero means no bound
	// besides the caller's context.
	promptTimeout time.Duration

	now func() time.Time

	mu           sync.Mutex
	denials      []time.Time
	legacyNotice time.Time

	logger *logger.Logger
}

// AuthOption customizes an Authenticator built by NewAuthService.
type AuthOption func(*authService)

// WithClock replaces the time source used for lockout and notice windows.
func WithClock(now func() time.Time) AuthOption {
	return func(a *authService) {
		a.now = now
	}
}

// WithAnchorReset makes Revoke also forget every sync anchor, so the next
// session of a re-paired desktop starts with a slow sync.
func WithAnchorReset(anchors store.AnchorRepository) AuthOption {
	return func(a *authService) {
		a.anchors = anchors
	}
}

// WithPromptTimeout bounds each owner prompt.
func WithPromptTimeout(d time.Duration) AuthOption {
	return func(a *authService) {
		a.promptTimeout = d
	}
}

// NewAuthService constructs an Authenticator over the stored credential list.
func NewAuthService(passwords store.PasswordRepository, hasher crypto.CredentialHasher, prompter Prompter, logger *logger.Logger, opts ...AuthOption) Authenticator {
	a := &authService{
		passwords: passwords,
		hasher:    hasher,
		prompter:  prompter,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate implements [Authenticator].
//
//   - an empty credential is a legacy peer: Deny, with a notice at most
//     once per LegacyNoticeInterval;
//   - a credential matching any stored hash: Allow;
//   - otherwise PromptUser, unless LockoutDenials denials happened within
//     LockoutWindow, in which case Deny.
func (a *authService) Authenticate(ctx context.Context, clientID, credential string) (Decision, error) {
	log := logger.FromContext(ctx)

	if credential == "" {
		a.legacyPeer(ctx, clientID)
		return Deny, nil
	}

	credentials, err := a.passwords.List(ctx)
	if err != nil {
		log.Err(err).Msg("loading trusted credentials failed")
		return Deny, fmt.Errorf("loading trusted credentials: %w", err)
	}

	for _, stored := range credentials {
		if a.hasher.Matches(credential, stored.Salt, stored.Hash) {
			log.Debug().Str("client_id", clientID).Msg("credential matched")
			return Allow, nil
		}
	}

	if a.lockedOut() {
		log.Warn().Str("client_id", clientID).Msg("too many denied pairing attempts, refusing without prompt")
		return Deny, nil
	}

	return PromptUser, nil
}

// Authorize implements [Authenticator].
func (a *authService) Authorize(ctx context.Context, peer models.PeerInfo, credential string) (Decision, error) {
	log := logger.FromContext(ctx)

	decision, err := a.Authenticate(ctx, peer.ClientID, credential)
	if err != nil || decision != PromptUser {
		return decision, err
	}

	promptCtx := ctx
	if a.promptTimeout > 0 {
		var cancel context.CancelFunc
		promptCtx, cancel = context.WithTimeout(ctx, a.promptTimeout)
		defer cancel()
	}

	allowed, err := a.prompter.Confirm(promptCtx, peer)
	if err != nil || !allowed {
		a.recordDenial()
		log.Info().Err(err).Str("client_id", peer.ClientID).Msg("pairing request denied")
		return Deny, nil
	}

	if err := a.remember(ctx, credential); err != nil {
		log.Err(err).Str("client_id", peer.ClientID).Msg("saving accepted credential failed")
		return Deny, err
	}

	log.Info().Str("client_id", peer.ClientID).Msg("new desktop paired")
	return Allow, nil
}

// Revoke implements [Authenticator].
func (a *authService) Revoke(ctx context.Context) error {
	if err := a.passwords.Save(ctx, nil); err != nil {
		return fmt.Errorf("revoking credentials: %w", err)
	}
	if a.anchors != nil {
		if err := a.anchors.Reset(ctx); err != nil {
			return fmt.Errorf("resetting anchors: %w", err)
		}
	}
	logger.FromContext(ctx).Info().Msg("all trusted desktops revoked")
	return nil
}

// TrustedPeers implements [Authenticator].
func (a *authService) TrustedPeers(ctx context.Context) (int, error) {
	credentials, err := a.passwords.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(credentials), nil
}

// remember prepends a fresh salted hash of credential to the stored list.
func (a *authService) remember(ctx context.Context, credential string) error {
	salt, err := a.hasher.GenerateSalt()
	if err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}

	credentials, err := a.passwords.List(ctx)
	if err != nil {
		return fmt.Errorf("loading trusted credentials: %w", err)
	}

	entry := models.StoredCredential{
		Salt:      salt,
		Hash:      a.hasher.Hash(credential, salt),
		CreatedAt: a.now().UTC(),
	}
	credentials = append([]models.StoredCredential{entry}, credentials...)
	if len(credentials) > MaxTrustedPeers {
		credentials = credentials[:MaxTrustedPeers]
	}

	return a.passwords.Save(ctx, credentials)
}

func (a *authService) recordDenial() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.denials = append(a.pruneDenials(), a.now())
}

func (a *authService) lockedOut() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.denials = a.pruneDenials()
	return len(a.denials) >= LockoutDenials
}

// pruneDenials drops denials older than LockoutWindow. Callers hold mu.
func (a *authService) pruneDenials() []time.Time {
	cutoff := a.now().Add(-LockoutWindow)
	kept := a.denials[:0]
	for _, at := range a.denials {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	return kept
}

func (a *authService) legacyPeer(ctx context.Context, clientID string) {
	a.mu.Lock()
	now := a.now()
	notify := a.legacyNotice.IsZero() || now.Sub(a.legacyNotice) >= LegacyNoticeInterval
	if notify {
		a.legacyNotice = now
	}
	a.mu.Unlock()

	if !notify {
		return
	}

	logger.FromContext(ctx).Warn().Str("client_id", clientID).Msg("legacy desktop without credential refused")
	a.prompter.Notify(ctx, fmt.Sprintf("Desktop %q uses an old sync client and was refused. Update it to pair.", clientID))
}
