package keplrflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/networkteam/keplrflow/driver"
	"github.com/networkteam/keplrflow/pages"
)

// AccessGrantedFunc reports whether a page shows that the dApp already has access to the wallet.
type AccessGrantedFunc func(ctx context.Context, w driver.Window) (bool, error)

// TextMarker returns an AccessGrantedFunc matching pages whose text contains marker,
// typically the address of the connected account.
func TextMarker(marker string) AccessGrantedFunc {
	return func(ctx context.Context, w driver.Window) (bool, error) {
		text, err := w.TextContent(ctx, "html")
		if err != nil {
			return false, err
		}
		return strings.Contains(text, marker), nil
	}
}

// SwitchToApproval waits for the notification popup of the extension.
// The extension identity must be resolved. A driver reporting
// driver.ErrNotificationNotFound yields NotificationNotFound as well.
func (s *Session) SwitchToApproval(ctx context.Context) (driver.NotificationOutcome, error) {
	id, ok := s.CurrentID()
	if !ok {
		return nil, ErrIdentityNotResolved
	}

	var outcome driver.NotificationOutcome
	err := s.step(ctx, "switch to notification", pages.NotificationPath, func(ctx context.Context) error {
		var err error
		outcome, err = s.driver.SwitchToKeplrNotification(ctx, id)
		if errors.Is(err, driver.ErrNotificationNotFound) {
			outcome, err = driver.NotificationNotFound{}, nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// AcceptAccess approves a connection request of a dApp.
//
// When no notification popup appears, access may already have been granted
// or the extension approved implicitly. Then every open page is checked with
// Options.AccessGranted and the result is reported without an error.
func (s *Session) AcceptAccess(ctx context.Context) (_ bool, err error) {
	ctx, end := s.operation(ctx, "accept-access")
	defer func() { end(err) }()

	outcome, err := s.SwitchToApproval(ctx)
	if err != nil {
		return false, err
	}

	switch o := outcome.(type) {
	case driver.NotificationFound:
		if err := s.approve(ctx, o.Window, pages.Notification.ApproveButton); err != nil {
			return false, err
		}
		return true, nil
	default:
		return s.accessAlreadyGranted(ctx), nil
	}
}

// ConfirmTransaction approves a pending transaction. A transaction always
// shows a notification popup, so a missing popup is an error.
func (s *Session) ConfirmTransaction(ctx context.Context) (_ bool, err error) {
	ctx, end := s.operation(ctx, "confirm-transaction")
	defer func() { end(err) }()

	return s.resolveNotification(ctx, pages.Notification.ApproveButton)
}

// RejectTransaction rejects a pending transaction, failing like ConfirmTransaction when no popup appears.
func (s *Session) RejectTransaction(ctx context.Context) (_ bool, err error) {
	ctx, end := s.operation(ctx, "reject-transaction")
	defer func() { end(err) }()

	return s.resolveNotification(ctx, pages.Notification.RejectButton)
}

// DisconnectWallet revokes all dApp connections in the permission panel of the extension.
func (s *Session) DisconnectWallet(ctx context.Context) (_ bool, err error) {
	ctx, end := s.operation(ctx, "disconnect-wallet")
	defer func() { end(err) }()

	id, ok := s.CurrentID()
	if !ok {
		return false, ErrIdentityNotResolved
	}

	text := pages.Permission.DisconnectAllText
	permissionWindow := func(ctx context.Context) (driver.Window, error) {
		return s.driver.KeplrPermissionWindow(ctx, id)
	}
	err = s.stepIn(ctx, "disconnect all", text, permissionWindow, func(ctx context.Context, w driver.Window) error {
		return s.driver.ClickByText(ctx, text, w)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) resolveNotification(ctx context.Context, button string) (bool, error) {
	outcome, err := s.SwitchToApproval(ctx)
	if err != nil {
		return false, err
	}

	found, ok := outcome.(driver.NotificationFound)
	if !ok {
		return false, &StepError{Step: "switch to notification", Target: pages.NotificationPath, Err: driver.ErrNotificationNotFound}
	}
	if err := s.approve(ctx, found.Window, button); err != nil {
		return false, err
	}
	return true, nil
}

// approve clicks button in the notification window and waits until the window closed.
func (s *Session) approve(ctx context.Context, w driver.Window, button string) error {
	return s.stepIn(ctx, "resolve notification", button, inWindow(w), func(ctx context.Context, w driver.Window) error {
		return s.driver.WaitAndClick(ctx, button, w, driver.ClickOptions{WaitForEvent: driver.WindowEventClose})
	})
}

// accessAlreadyGranted scans all open pages with Options.AccessGranted. Failures count as not granted.
func (s *Session) accessAlreadyGranted(ctx context.Context) bool {
	s.logger.InfoContext(ctx, "No notification window, checking open pages for granted access")

	windows, err := s.driver.Pages(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Listing pages failed", slog.Any("error", err))
		return false
	}

	for _, w := range windows {
		granted, err := s.options.AccessGranted(ctx, w)
		if err != nil {
			s.logger.DebugContext(ctx, "Checking page for granted access failed", slog.String("url", w.URL()), slog.Any("error", err))
			continue
		}
		if granted {
			s.logger.InfoContext(ctx, "Access already granted", slog.String("url", w.URL()))
			return true
		}
	}
	return false
}
