package pwdriver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/keplrflow/driver"
	"github.com/networkteam/keplrflow/pages"
)

func extensionURL(extensionID, path string) string {
	return "chrome-extension://" + extensionID + "/" + path
}

func (d *Driver) notificationURL(extensionID string) string {
	if d.options.NotificationURL != "" {
		return d.options.NotificationURL
	}
	return extensionURL(extensionID, pages.NotificationPath)
}

func (d *Driver) permissionURL(extensionID string) string {
	if d.options.PermissionURL != "" {
		return d.options.PermissionURL
	}
	return extensionURL(extensionID, pages.PermissionPath)
}

// SwitchToKeplrNotification waits up to Options.NotificationTimeout for a notification popup of the extension.
// The popup becomes the active window. The permission panel opened by the driver shares the
// popup URL and is never taken for a notification.
func (d *Driver) SwitchToKeplrNotification(ctx context.Context, extensionID string) (driver.NotificationOutcome, error) {
	prefix := d.notificationURL(extensionID)
	permission, _ := d.window(WindowPermission)
	main, _ := d.window(WindowMain)
	keplr, _ := d.window(WindowKeplr)

	page, found, err := d.waitForPage(ctx, d.options.NotificationTimeout, func(p playwright.Page) bool {
		if p == permission || p == main || p == keplr {
			return false
		}
		return strings.HasPrefix(p.URL(), prefix)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		d.logger.InfoContext(ctx, "No notification window appeared", slog.String("prefix", prefix), slog.Duration("timeout", d.options.NotificationTimeout))
		return driver.NotificationNotFound{}, nil
	}

	d.register(WindowNotification, page)
	d.activate(WindowNotification)
	if err := page.BringToFront(); err != nil {
		return nil, fmt.Errorf("focusing notification: %w", err)
	}
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: timeout(ctx, d.options.Timeout),
	}); err != nil {
		return nil, mapError(err, "notification load")
	}

	d.logger.InfoContext(ctx, "Switched to notification window", slog.String("url", page.URL()))
	return driver.NotificationFound{Window: wrap(page)}, nil
}

// KeplrPermissionWindow returns the permission panel, opening it in a new page on first use.
func (d *Driver) KeplrPermissionWindow(ctx context.Context, extensionID string) (driver.Window, error) {
	if page, ok := d.window(WindowPermission); ok {
		return wrap(page), nil
	}

	bctx, err := d.browserContext()
	if err != nil {
		return nil, err
	}
	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("opening permission page: %w", err)
	}
	// Registered before navigating so the page never counts as a notification
	d.register(WindowPermission, page)

	target := d.permissionURL(extensionID)
	if _, err := page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   timeout(ctx, d.options.Timeout),
	}); err != nil {
		return nil, mapError(err, target)
	}
	return wrap(page), nil
}
