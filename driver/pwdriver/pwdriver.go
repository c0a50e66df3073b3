// Package pwdriver implements driver.Driver with playwright-go.
//
// The driver launches a persistent Chromium context with the wallet extension
// loaded, or attaches to a context created by the caller. Pages of the
// context are tracked in a registry of named windows which is kept current
// through page events of the browser context.
package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/keplrflow/collector"
	"github.com/networkteam/keplrflow/driver"
)

// Window names of the registry
const (
	WindowMain         = "main"
	WindowKeplr        = "keplr"
	WindowPermission   = "permission"
	WindowNotification = "notification"
)

const pollInterval = 250 * time.Millisecond

type Options struct {
	// Playwright is a running playwright instance used to launch the browser.
	// Default: started by Init and stopped by Close
	Playwright *playwright.Playwright
	// Context is an existing browser context with the extension loaded. Init attaches to it instead of launching a browser.
	// Default: nil
	Context playwright.BrowserContext

	// ExtensionPath is the unpacked extension directory. Required when no Context is given.
	ExtensionPath string
	// UserDataDir is the profile directory of the launched browser.
	// Default: "", a temporary directory
	UserDataDir string
	// Headless launches the browser without a window.
	Headless bool

	// Timeout is how long element interactions wait.
	// Default: 10s
	Timeout time.Duration
	// NotificationTimeout is how long SwitchToKeplrNotification waits for the popup.
	// Default: 5s
	NotificationTimeout time.Duration
	// ExistenceTimeout is the grace period of DoesElementExist.
	// Default: 1s
	ExistenceTimeout time.Duration

	// NotificationURL is the URL prefix of notification popups.
	// Default: chrome-extension://<id>/popup.html
	NotificationURL string
	// PermissionURL is the URL of the permission panel.
	// Default: chrome-extension://<id>/popup.html#/setting/security/permission
	PermissionURL string
	// OnboardingURL is a URL suffix (without query or fragment) identifying the onboarding window.
	// Default: any chrome-extension:// page ending in /register.html
	OnboardingURL string

	// Logger receives window tracking logs.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultOptions returns the options used for zero values
func DefaultOptions() Options {
	return Options{
		Timeout:             10 * time.Second,
		NotificationTimeout: 5 * time.Second,
		ExistenceTimeout:    1 * time.Second,
		Logger:              slog.Default(),
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.Timeout == 0 {
		o.Timeout = defaults.Timeout
	}
	if o.NotificationTimeout == 0 {
		o.NotificationTimeout = defaults.NotificationTimeout
	}
	if o.ExistenceTimeout == 0 {
		o.ExistenceTimeout = defaults.ExistenceTimeout
	}
	if o.Logger == nil {
		o.Logger = defaults.Logger
	}
	return o
}

// Driver is a driver.Driver backed by a playwright browser context
type Driver struct {
	options Options
	logger  *slog.Logger

	pw          *playwright.Playwright
	ownsPW      bool
	bctx        playwright.BrowserContext
	ownsContext bool

	events *collector.Notifier[WindowEvent]

	mx       sync.Mutex
	windows  map[string]playwright.Page
	active   string
	previous string
}

var (
	_ driver.Driver      = (*Driver)(nil)
	_ driver.Snapshotter = (*Driver)(nil)
	_ driver.Closer      = (*Driver)(nil)
)

// New creates a driver. The browser is started or attached by Init.
func New(options Options) *Driver {
	options = options.withDefaults()
	return &Driver{
		options: options,
		logger:  options.Logger,
		events:  collector.NewNotifier[WindowEvent](),
		windows: make(map[string]playwright.Page),
		active:  WindowMain,
	}
}

// Init attaches to Options.Context or launches Chromium with the extension.
// Calling Init again is a no-op.
func (d *Driver) Init(ctx context.Context) error {
	if d.bctx != nil {
		return nil
	}

	bctx := d.options.Context
	if bctx == nil {
		var err error
		bctx, err = d.launch()
		if err != nil {
			return err
		}
		d.ownsContext = true
	}
	d.bctx = bctx
	d.bctx.SetDefaultTimeout(ms(d.options.Timeout))

	bctx.OnPage(d.watchPage)
	for _, page := range bctx.Pages() {
		d.watchPage(page)
	}

	d.logger.InfoContext(ctx, "Browser context ready", slog.Int("pages", len(bctx.Pages())), slog.Bool("attached", !d.ownsContext))
	return nil
}

func (d *Driver) launch() (playwright.BrowserContext, error) {
	if d.options.ExtensionPath == "" {
		return nil, errors.New("extension path is required to launch a browser")
	}

	pw := d.options.Playwright
	if pw == nil {
		var err error
		pw, err = playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("starting playwright: %w", err)
		}
		d.ownsPW = true
	}
	d.pw = pw

	bctx, err := pw.Chromium.LaunchPersistentContext(d.options.UserDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(d.options.Headless),
		Args: []string{
			"--disable-extensions-except=" + d.options.ExtensionPath,
			"--load-extension=" + d.options.ExtensionPath,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("launching chromium with extension %s: %w", d.options.ExtensionPath, err)
	}
	return bctx, nil
}

// Close closes a launched browser and stops a started playwright instance.
// An attached Context is left open.
func (d *Driver) Close() error {
	d.events.Close()

	var errs []error
	if d.ownsContext && d.bctx != nil {
		if err := d.bctx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing browser context: %w", err))
		}
	}
	if d.ownsPW && d.pw != nil {
		if err := d.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping playwright: %w", err))
		}
	}
	d.bctx = nil
	return errors.Join(errs...)
}

// Subscribe returns window events of the browser context until ctx is done
func (d *Driver) Subscribe(ctx context.Context) <-chan WindowEvent {
	return d.events.Subscribe(ctx)
}

func (d *Driver) browserContext() (playwright.BrowserContext, error) {
	if d.bctx == nil {
		return nil, errors.New("driver not initialized")
	}
	return d.bctx, nil
}

// ms converts a duration to playwright milliseconds
func ms(dur time.Duration) float64 {
	return float64(dur.Milliseconds())
}

// timeout returns the playwright timeout for an interaction, shortened to the deadline of ctx
func timeout(ctx context.Context, dur time.Duration) *float64 {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < dur {
			dur = max(remaining, time.Millisecond)
		}
	}
	return playwright.Float(ms(dur))
}

// mapError translates playwright timeouts to driver.ErrElementTimeout
func mapError(err error, target string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s: %v", driver.ErrElementTimeout, target, err)
	}
	return fmt.Errorf("%s: %w", target, err)
}
