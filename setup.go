package keplrflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/networkteam/keplrflow/driver"
)

// InitialSetup prepares a browser for wallet interactions: it initializes the
// driver, assigns the known windows, names the extension tab, resolves the
// extension identity and onboards the wallet described by req.
//
// To attach to an already running browser, pass a driver constructed with
// that browser (see pwdriver.Options.Context).
func InitialSetup(ctx context.Context, d driver.Driver, req OnboardingRequest, options Options) (_ *Session, err error) {
	s := NewSessionWithOptions(d, options)

	ctx, end := s.operation(ctx, "initial-setup")
	defer func() { end(err) }()

	if err := s.step(ctx, "init driver", "", d.Init); err != nil {
		return nil, fmt.Errorf("initializing driver: %w", err)
	}
	if err := s.step(ctx, "assign windows", "", d.AssignWindows); err != nil {
		return nil, err
	}
	err = s.step(ctx, "assign active tab", s.options.ActiveTabName, func(ctx context.Context) error {
		return d.AssignActiveTabName(ctx, s.options.ActiveTabName)
	})
	if err != nil {
		return nil, err
	}

	identity, err := s.ResolveIdentity(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.Onboard(ctx, req); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Wallet set up", slog.String("extensionId", identity.ID), slog.String("version", identity.Version))
	return s, nil
}
