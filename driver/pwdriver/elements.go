package pwdriver

import (
	"context"
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/keplrflow/driver"
)

func (d *Driver) waitVisible(ctx context.Context, loc playwright.Locator, target string) error {
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: timeout(ctx, d.options.Timeout),
	})
	return mapError(err, target)
}

func byText(page playwright.Page, text string) playwright.Locator {
	return page.GetByText(text, playwright.PageGetByTextOptions{Exact: playwright.Bool(true)}).First()
}

// WaitAndClick waits for locator in w and clicks it. With ClickOptions.Number the n-th match is clicked,
// otherwise the locator must match a single element.
func (d *Driver) WaitAndClick(ctx context.Context, locator string, w driver.Window, opts driver.ClickOptions) error {
	page, err := d.pageOf(w)
	if err != nil {
		return err
	}

	loc := page.Locator(locator)
	if opts.Number > 0 {
		loc = loc.Nth(opts.Number - 1)
	}
	if err := d.waitVisible(ctx, loc, locator); err != nil {
		return err
	}

	click := func() error {
		return loc.Click(playwright.LocatorClickOptions{
			NoWaitAfter: playwright.Bool(opts.DontWait),
			Timeout:     timeout(ctx, d.options.Timeout),
		})
	}

	if opts.WaitForEvent == "" {
		return mapError(click(), locator)
	}

	// The listener is installed before clicking, a window closing right after the click is still seen
	_, err = page.ExpectEvent(opts.WaitForEvent, click, playwright.PageExpectEventOptions{
		Timeout: timeout(ctx, d.options.Timeout),
	})
	if err != nil && opts.WaitForEvent == driver.WindowEventClose && page.IsClosed() {
		return nil
	}
	return mapError(err, fmt.Sprintf("%s (waiting for %s)", locator, opts.WaitForEvent))
}

func (d *Driver) WaitAndClickByText(ctx context.Context, text string, w driver.Window) error {
	page, err := d.pageOf(w)
	if err != nil {
		return err
	}
	loc := byText(page, text)
	if err := d.waitVisible(ctx, loc, text); err != nil {
		return err
	}
	return mapError(loc.Click(playwright.LocatorClickOptions{Timeout: timeout(ctx, d.options.Timeout)}), text)
}

func (d *Driver) ClickByText(ctx context.Context, text string, w driver.Window) error {
	page, err := d.pageOf(w)
	if err != nil {
		return err
	}
	return mapError(byText(page, text).Click(playwright.LocatorClickOptions{Timeout: timeout(ctx, d.options.Timeout)}), text)
}

// WaitAndType fills the first element matching locator in the active window
func (d *Driver) WaitAndType(ctx context.Context, locator, text string) error {
	return d.WaitAndTypeByLocator(ctx, locator, text, 0)
}

func (d *Driver) WaitAndTypeByLocator(ctx context.Context, locator, text string, index int) error {
	page, err := d.activePage()
	if err != nil {
		return err
	}
	loc := page.Locator(locator).Nth(index)
	if err := d.waitVisible(ctx, loc, locator); err != nil {
		return err
	}
	return mapError(loc.Fill(text, playwright.LocatorFillOptions{Timeout: timeout(ctx, d.options.Timeout)}), locator)
}

func (d *Driver) WaitForByText(ctx context.Context, text string, w driver.Window) error {
	page, err := d.pageOf(w)
	if err != nil {
		return err
	}
	return d.waitVisible(ctx, byText(page, text), text)
}

// DoesElementExist waits Options.ExistenceTimeout for locator in the active window
func (d *Driver) DoesElementExist(ctx context.Context, locator string) (bool, error) {
	page, err := d.activePage()
	if err != nil {
		return false, err
	}
	err = page.Locator(locator).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: timeout(ctx, d.options.ExistenceTimeout),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return false, nil
	}
	if err != nil {
		return false, mapError(err, locator)
	}
	return true, nil
}

// Snapshot returns the HTML of the active window
func (d *Driver) Snapshot(ctx context.Context) (string, error) {
	page, err := d.activePage()
	if err != nil {
		return "", err
	}
	return page.Content()
}
