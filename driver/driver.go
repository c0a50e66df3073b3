// Package driver declares the browser capabilities the wallet flows are built on.
//
// The interfaces mirror what an end-to-end harness offers: tracking of the
// browser windows (main page, extension onboarding page, permission panel,
// notification popups) and primitive element interactions. The
// pwdriver subpackage implements them with playwright-go.
package driver

import (
	"context"
	"errors"
)

var (
	// ErrElementTimeout is returned when an expected element did not appear in time.
	ErrElementTimeout = errors.New("element did not appear in time")
	// ErrNotificationNotFound reports a missing notification window where one is required,
	// e.g. when confirming a transaction. Drivers report absence as NotificationNotFound instead.
	ErrNotificationNotFound = errors.New("Unable to Switch to Notification Window")
	// ErrWindowNotAssigned is returned when a named window was requested before AssignWindows found it.
	ErrWindowNotAssigned = errors.New("window not assigned")
)

// Window is an opaque handle to a browser page owned by the Driver.
type Window interface {
	// URL returns the current URL of the page.
	URL() string
	// TextContent returns the text content of the first element matching selector.
	TextContent(ctx context.Context, selector string) (string, error)
}

// ExtensionData describes an installed browser extension.
type ExtensionData struct {
	Name    string
	ID      string
	Version string
}

// ClickOptions refine WaitAndClick.
type ClickOptions struct {
	// Number selects the n-th matching element, 1-based. Zero requires the locator to match a single element.
	Number int
	// DontWait clicks without waiting for navigation triggered by the click.
	DontWait bool
	// WaitForEvent waits for the given window event (e.g. "close") caused by the click.
	WaitForEvent string
}

// WindowEventClose is the WaitForEvent value for a window closing.
const WindowEventClose = "close"

// Driver is the window tracker and element facade the wallet flows use.
//
// Methods without an explicit window act on the active tab, see AssignActiveTabName.
type Driver interface {
	// Init starts or attaches to the browser.
	Init(ctx context.Context) error
	// AssignWindows records the main and extension onboarding windows among the open pages.
	AssignWindows(ctx context.Context) error
	// AssignActiveTabName names the window targeted by calls without an explicit window.
	AssignActiveTabName(ctx context.Context, name string) error

	// KeplrWindow returns the extension onboarding window.
	KeplrWindow(ctx context.Context) (Window, error)
	// KeplrPermissionWindow returns the extension permission management panel, opening it if needed.
	KeplrPermissionWindow(ctx context.Context, extensionID string) (Window, error)
	// SwitchToKeplrNotification waits for the notification popup of the extension and focuses it.
	// A popup that does not appear in time is reported as NotificationNotFound, not as an error.
	SwitchToKeplrNotification(ctx context.Context, extensionID string) (NotificationOutcome, error)

	// ExtensionsData returns installed extensions keyed by lower-cased name.
	ExtensionsData(ctx context.Context) (map[string]ExtensionData, error)
	// Pages returns all pages of the first browser context.
	Pages(ctx context.Context) ([]Window, error)

	WaitAndClick(ctx context.Context, locator string, w Window, opts ClickOptions) error
	WaitAndClickByText(ctx context.Context, text string, w Window) error
	// ClickByText clicks the element with text without waiting for it; a nil window means the active tab.
	ClickByText(ctx context.Context, text string, w Window) error
	WaitAndType(ctx context.Context, locator, text string) error
	// WaitAndTypeByLocator types into the index-th (0-based) element matching locator.
	WaitAndTypeByLocator(ctx context.Context, locator, text string, index int) error
	WaitForByText(ctx context.Context, text string, w Window) error
	// DoesElementExist reports whether locator matches within a short grace period.
	DoesElementExist(ctx context.Context, locator string) (bool, error)
}

// Snapshotter is implemented by drivers that can capture the HTML of the active tab.
type Snapshotter interface {
	Snapshot(ctx context.Context) (string, error)
}

// Closer is implemented by drivers owning browser resources.
type Closer interface {
	Close() error
}
