package keplrflow_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/networkteam/keplrflow/driver"
)

type fakeWindow struct {
	url     string
	text    string
	textErr error
}

func (w *fakeWindow) URL() string {
	return w.url
}

func (w *fakeWindow) TextContent(_ context.Context, selector string) (string, error) {
	if w.textErr != nil {
		return "", w.textErr
	}
	return w.text, nil
}

// fakeDriver records every call as a readable line and fails the call matching failOn.
type fakeDriver struct {
	calls []string

	extensions         map[string]driver.ExtensionData
	extensionsDataErr  error
	extensionsDataRuns int

	passwordFieldPresent bool
	notification         driver.NotificationOutcome
	pages                []driver.Window
	pagesErr             error
	snapshot             string

	// failOn is a prefix of the call line that fails with failErr
	failOn  string
	failErr error

	keplr      *fakeWindow
	permission *fakeWindow
	popup      *fakeWindow
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		extensions: map[string]driver.ExtensionData{
			"keplr": {Name: "Keplr", ID: "dmkamcknogkgcdfhhbddcghachkejeap", Version: "0.12.28"},
		},
		keplr:      &fakeWindow{url: "chrome-extension://dmkamcknogkgcdfhhbddcghachkejeap/register.html"},
		permission: &fakeWindow{url: "chrome-extension://dmkamcknogkgcdfhhbddcghachkejeap/popup.html#/setting/security/permission"},
		popup:      &fakeWindow{url: "chrome-extension://dmkamcknogkgcdfhhbddcghachkejeap/popup.html#/permission"},
	}
}

func (d *fakeDriver) record(format string, args ...any) error {
	line := fmt.Sprintf(format, args...)
	d.calls = append(d.calls, line)
	if d.failOn != "" && strings.HasPrefix(line, d.failOn) {
		return d.failErr
	}
	return nil
}

func (d *fakeDriver) name(w driver.Window) string {
	switch w {
	case nil:
		return "active"
	case d.keplr:
		return "keplr"
	case d.permission:
		return "permission"
	case d.popup:
		return "popup"
	}
	return w.URL()
}

func (d *fakeDriver) Init(ctx context.Context) error {
	return d.record("Init")
}

func (d *fakeDriver) AssignWindows(ctx context.Context) error {
	return d.record("AssignWindows")
}

func (d *fakeDriver) AssignActiveTabName(ctx context.Context, name string) error {
	return d.record("AssignActiveTabName(%s)", name)
}

func (d *fakeDriver) KeplrWindow(ctx context.Context) (driver.Window, error) {
	return d.keplr, nil
}

func (d *fakeDriver) KeplrPermissionWindow(ctx context.Context, extensionID string) (driver.Window, error) {
	if err := d.record("KeplrPermissionWindow(%s)", extensionID); err != nil {
		return nil, err
	}
	return d.permission, nil
}

func (d *fakeDriver) SwitchToKeplrNotification(ctx context.Context, extensionID string) (driver.NotificationOutcome, error) {
	if err := d.record("SwitchToKeplrNotification(%s)", extensionID); err != nil {
		return nil, err
	}
	if d.notification == nil {
		return driver.NotificationFound{Window: d.popup}, nil
	}
	return d.notification, nil
}

func (d *fakeDriver) ExtensionsData(ctx context.Context) (map[string]driver.ExtensionData, error) {
	d.extensionsDataRuns++
	if err := d.record("ExtensionsData"); err != nil {
		return nil, err
	}
	return d.extensions, d.extensionsDataErr
}

func (d *fakeDriver) Pages(ctx context.Context) ([]driver.Window, error) {
	if err := d.record("Pages"); err != nil {
		return nil, err
	}
	return d.pages, d.pagesErr
}

func (d *fakeDriver) WaitAndClick(ctx context.Context, locator string, w driver.Window, opts driver.ClickOptions) error {
	return d.record("WaitAndClick(%s, %s, %+v)", locator, d.name(w), opts)
}

func (d *fakeDriver) WaitAndClickByText(ctx context.Context, text string, w driver.Window) error {
	return d.record("WaitAndClickByText(%s, %s)", text, d.name(w))
}

func (d *fakeDriver) ClickByText(ctx context.Context, text string, w driver.Window) error {
	return d.record("ClickByText(%s, %s)", text, d.name(w))
}

func (d *fakeDriver) WaitAndType(ctx context.Context, locator, text string) error {
	return d.record("WaitAndType(%s, %s)", locator, text)
}

func (d *fakeDriver) WaitAndTypeByLocator(ctx context.Context, locator, text string, index int) error {
	return d.record("WaitAndTypeByLocator(%s, %s, %d)", locator, text, index)
}

func (d *fakeDriver) WaitForByText(ctx context.Context, text string, w driver.Window) error {
	return d.record("WaitForByText(%s, %s)", text, d.name(w))
}

func (d *fakeDriver) DoesElementExist(ctx context.Context, locator string) (bool, error) {
	if err := d.record("DoesElementExist(%s)", locator); err != nil {
		return false, err
	}
	return d.passwordFieldPresent, nil
}

func (d *fakeDriver) Snapshot(ctx context.Context) (string, error) {
	return d.snapshot, nil
}

// callsWithPrefix returns the recorded calls starting with prefix
func (d *fakeDriver) callsWithPrefix(prefix string) []string {
	var result []string
	for _, c := range d.calls {
		if strings.HasPrefix(c, prefix) {
			result = append(result, c)
		}
	}
	return result
}

var _ driver.Driver = (*fakeDriver)(nil)
var _ driver.Snapshotter = (*fakeDriver)(nil)
