package pwdriver

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/samber/lo"

	"github.com/networkteam/keplrflow/driver"
	"github.com/networkteam/keplrflow/pages"
)

type WindowEventKind string

const (
	WindowOpened    WindowEventKind = "opened"
	WindowNavigated WindowEventKind = "navigated"
	WindowClosed    WindowEventKind = "closed"
)

// WindowEvent is published for every page of the browser context that opens, navigates or closes
type WindowEvent struct {
	Kind WindowEventKind
	Page playwright.Page
	URL  string
}

// Window wraps a playwright page as driver.Window
type Window struct {
	page playwright.Page
}

func (w *Window) URL() string {
	return w.page.URL()
}

func (w *Window) TextContent(ctx context.Context, selector string) (string, error) {
	text, err := w.page.Locator(selector).First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: timeout(ctx, 5*time.Second),
	})
	return text, mapError(err, selector)
}

// Page returns the underlying playwright page
func (w *Window) Page() playwright.Page {
	return w.page
}

func wrap(page playwright.Page) driver.Window {
	return &Window{page: page}
}

func (d *Driver) watchPage(page playwright.Page) {
	d.logger.Debug("Page opened", slog.String("url", page.URL()))
	d.events.Notify(WindowEvent{Kind: WindowOpened, Page: page, URL: page.URL()})

	page.OnFrameNavigated(func(frame playwright.Frame) {
		d.events.Notify(WindowEvent{Kind: WindowNavigated, Page: page, URL: frame.URL()})
	})
	page.OnClose(func(page playwright.Page) {
		d.forget(page)
		d.logger.Debug("Page closed", slog.String("url", page.URL()))
		d.events.Notify(WindowEvent{Kind: WindowClosed, Page: page, URL: page.URL()})
	})
}

// forget removes a closed page from the registry.
// If it was the active window the previously active one takes over,
// or the main window when that one is gone as well.
func (d *Driver) forget(page playwright.Page) {
	d.mx.Lock()
	defer d.mx.Unlock()

	for name, p := range d.windows {
		if p != page {
			continue
		}
		delete(d.windows, name)
		if d.active == name {
			d.active = d.previous
			d.previous = WindowMain
			if !d.isOpenLocked(d.active) {
				d.active = WindowMain
			}
		}
		if d.previous == name {
			d.previous = WindowMain
		}
	}
}

// isOpenLocked must be called with d.mx held
func (d *Driver) isOpenLocked(name string) bool {
	page, ok := d.windows[name]
	return ok && !page.IsClosed()
}

func (d *Driver) register(name string, page playwright.Page) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.windows[name] = page
}

func (d *Driver) window(name string) (playwright.Page, bool) {
	d.mx.Lock()
	defer d.mx.Unlock()
	page, ok := d.windows[name]
	if !ok || page.IsClosed() {
		return nil, false
	}
	return page, true
}

// activate makes the named window the target of calls without an explicit window
func (d *Driver) activate(name string) {
	d.mx.Lock()
	defer d.mx.Unlock()
	if d.active != name {
		d.previous = d.active
		d.active = name
	}
}

// ActiveName returns the name of the active window
func (d *Driver) ActiveName() string {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.active
}

func (d *Driver) activePage() (playwright.Page, error) {
	name := d.ActiveName()
	page, ok := d.window(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", driver.ErrWindowNotAssigned, name)
	}
	return page, nil
}

// pageOf resolves a window handle, nil meaning the active window
func (d *Driver) pageOf(w driver.Window) (playwright.Page, error) {
	switch w := w.(type) {
	case nil:
		return d.activePage()
	case *Window:
		if w == nil {
			return d.activePage()
		}
		return w.page, nil
	default:
		return nil, fmt.Errorf("window %T does not belong to the playwright driver", w)
	}
}

// AssignWindows records the first regular page as main window and waits for the onboarding page of the extension.
func (d *Driver) AssignWindows(ctx context.Context) error {
	bctx, err := d.browserContext()
	if err != nil {
		return err
	}

	if main, ok := lo.Find(bctx.Pages(), func(p playwright.Page) bool { return !isExtensionURL(p.URL()) }); ok {
		d.register(WindowMain, main)
	} else {
		main, err := bctx.NewPage()
		if err != nil {
			return fmt.Errorf("opening main page: %w", err)
		}
		d.register(WindowMain, main)
	}

	keplr, found, err := d.waitForPage(ctx, d.options.Timeout, func(p playwright.Page) bool {
		return d.isOnboardingURL(p.URL())
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s: no onboarding page opened", driver.ErrWindowNotAssigned, WindowKeplr)
	}
	d.register(WindowKeplr, keplr)

	d.logger.InfoContext(ctx, "Windows assigned", slog.String("keplr", keplr.URL()))
	return nil
}

// AssignActiveTabName makes the window registered as name the active window.
func (d *Driver) AssignActiveTabName(ctx context.Context, name string) error {
	page, ok := d.window(name)
	if !ok {
		return fmt.Errorf("%w: %s", driver.ErrWindowNotAssigned, name)
	}
	d.activate(name)
	if err := page.BringToFront(); err != nil {
		return fmt.Errorf("focusing %s: %w", name, err)
	}
	return nil
}

func (d *Driver) KeplrWindow(ctx context.Context) (driver.Window, error) {
	page, ok := d.window(WindowKeplr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", driver.ErrWindowNotAssigned, WindowKeplr)
	}
	return wrap(page), nil
}

func (d *Driver) Pages(ctx context.Context) ([]driver.Window, error) {
	bctx, err := d.browserContext()
	if err != nil {
		return nil, err
	}
	open := lo.Filter(bctx.Pages(), func(p playwright.Page, _ int) bool { return !p.IsClosed() })
	return lo.Map(open, func(p playwright.Page, _ int) driver.Window { return wrap(p) }), nil
}

// waitForPage returns the first open page matching match.
// It subscribes to window events before scanning, so a page opening during the scan is not missed.
// found is false when timeout passed; err is only set when ctx is done.
func (d *Driver) waitForPage(ctx context.Context, timeout time.Duration, match func(playwright.Page) bool) (_ playwright.Page, found bool, err error) {
	bctx, err := d.browserContext()
	if err != nil {
		return nil, false, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	events := d.events.Subscribe(waitCtx)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		page, ok := lo.Find(bctx.Pages(), func(p playwright.Page) bool {
			return !p.IsClosed() && match(p)
		})
		if ok {
			return page, true, nil
		}

		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}
			return nil, false, nil
		case _, open := <-events:
			if !open {
				events = nil
			}
		case <-ticker.C:
		}
	}
}

func isExtensionURL(u string) bool {
	return strings.HasPrefix(u, "chrome-extension://")
}

func (d *Driver) isOnboardingURL(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	bare := parsed.String()

	if d.options.OnboardingURL != "" {
		return strings.HasSuffix(bare, d.options.OnboardingURL)
	}
	return isExtensionURL(bare) && strings.HasSuffix(bare, "/"+pages.OnboardingPath)
}
