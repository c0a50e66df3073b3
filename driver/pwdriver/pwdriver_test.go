package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/keplrflow/driver"
)

func TestNew_Defaults(t *testing.T) {
	d := New(Options{})
	defer d.Close()

	assert.Equal(t, 10*time.Second, d.options.Timeout)
	assert.Equal(t, 5*time.Second, d.options.NotificationTimeout)
	assert.Equal(t, time.Second, d.options.ExistenceTimeout)
	assert.NotNil(t, d.logger)
	assert.Equal(t, WindowMain, d.ActiveName())
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil, "button"))

	timeoutErr := fmt.Errorf("locator.waitFor: %w: 10000ms exceeded", playwright.ErrTimeout)
	err := mapError(timeoutErr, "button")
	assert.ErrorIs(t, err, driver.ErrElementTimeout)
	assert.Contains(t, err.Error(), "button")

	other := errors.New("target closed")
	err = mapError(other, "button")
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, driver.ErrElementTimeout)
}

func TestTimeout(t *testing.T) {
	assert.Equal(t, 2000.0, *timeout(context.Background(), 2*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	assert.LessOrEqual(t, *timeout(ctx, 2*time.Second), 500.0)

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	assert.Equal(t, 1.0, *timeout(expired, 2*time.Second))
}

func TestParseExtensions(t *testing.T) {
	result := []any{
		map[string]any{"name": "Keplr", "id": "dmkamcknogkgcdfhhbddcghachkejeap", "version": "0.12.28"},
		map[string]any{"name": "Google Docs Offline", "id": "ghbmnnjooekpmoecnnnilnnbdlolhkhi", "version": "1.7"},
	}

	extensions, err := parseExtensions(result)
	require.NoError(t, err)
	assert.Equal(t, map[string]driver.ExtensionData{
		"keplr":               {Name: "Keplr", ID: "dmkamcknogkgcdfhhbddcghachkejeap", Version: "0.12.28"},
		"google docs offline": {Name: "Google Docs Offline", ID: "ghbmnnjooekpmoecnnnilnnbdlolhkhi", Version: "1.7"},
	}, extensions)

	_, err = parseExtensions("nope")
	assert.Error(t, err)
	_, err = parseExtensions([]any{"nope"})
	assert.Error(t, err)
}

func TestIsOnboardingURL(t *testing.T) {
	d := New(Options{})
	defer d.Close()

	assert.True(t, d.isOnboardingURL("chrome-extension://dmkamcknogkgcdfhhbddcghachkejeap/register.html"))
	assert.True(t, d.isOnboardingURL("chrome-extension://dmkamcknogkgcdfhhbddcghachkejeap/register.html#/welcome"))
	assert.False(t, d.isOnboardingURL("chrome-extension://dmkamcknogkgcdfhhbddcghachkejeap/popup.html"))
	assert.False(t, d.isOnboardingURL("https://example.com/register.html"))

	custom := New(Options{OnboardingURL: "/wallet/register.html"})
	defer custom.Close()
	assert.True(t, custom.isOnboardingURL("http://127.0.0.1:4455/wallet/register.html?step=1"))
	assert.False(t, custom.isOnboardingURL("http://127.0.0.1:4455/dapp.html"))
}

func TestExtensionURLs(t *testing.T) {
	d := New(Options{})
	defer d.Close()
	assert.Equal(t, "chrome-extension://abc/popup.html", d.notificationURL("abc"))
	assert.Equal(t, "chrome-extension://abc/popup.html#/setting/security/permission", d.permissionURL("abc"))

	custom := New(Options{NotificationURL: "http://localhost/popup", PermissionURL: "http://localhost/permission"})
	defer custom.Close()
	assert.Equal(t, "http://localhost/popup", custom.notificationURL("abc"))
	assert.Equal(t, "http://localhost/permission", custom.permissionURL("abc"))
}

func TestUninitializedDriver(t *testing.T) {
	d := New(Options{})
	defer d.Close()
	ctx := context.Background()

	_, err := d.ExtensionsData(ctx)
	assert.Error(t, err)
	_, err = d.Pages(ctx)
	assert.Error(t, err)
	assert.Error(t, d.AssignWindows(ctx))

	_, err = d.KeplrWindow(ctx)
	assert.ErrorIs(t, err, driver.ErrWindowNotAssigned)
	assert.ErrorIs(t, d.AssignActiveTabName(ctx, "keplr"), driver.ErrWindowNotAssigned)
	assert.ErrorIs(t, d.WaitAndType(ctx, "input", "text"), driver.ErrWindowNotAssigned)
}

type foreignWindow struct{}

func (foreignWindow) URL() string { return "" }
func (foreignWindow) TextContent(context.Context, string) (string, error) {
	return "", nil
}

func TestPageOf_ForeignWindow(t *testing.T) {
	d := New(Options{})
	defer d.Close()

	_, err := d.pageOf(foreignWindow{})
	assert.Error(t, err)
}

func TestInit_RequiresExtensionPath(t *testing.T) {
	d := New(Options{})
	defer d.Close()

	err := d.Init(context.Background())
	assert.ErrorContains(t, err, "extension path")
}

// stubPage is a page that only knows its URL and whether it is closed
type stubPage struct {
	playwright.Page
	url    string
	closed bool
}

func (p *stubPage) URL() string    { return p.url }
func (p *stubPage) IsClosed() bool { return p.closed }

func (p *stubPage) close(d *Driver) {
	p.closed = true
	d.forget(p)
}

func TestForget_ActiveWindowFallsBackToPrevious(t *testing.T) {
	d := New(Options{})
	defer d.Close()

	main := &stubPage{url: "https://dapp.test/"}
	popup := &stubPage{url: "chrome-extension://id/popup.html"}
	d.register(WindowMain, main)
	d.register(WindowNotification, popup)
	d.activate(WindowNotification)

	popup.close(d)

	assert.Equal(t, WindowMain, d.ActiveName())
	page, err := d.activePage()
	require.NoError(t, err)
	assert.True(t, page == playwright.Page(main))
}

func TestForget_ClosedPreviousWindowIsNotRestored(t *testing.T) {
	d := New(Options{})
	defer d.Close()

	main := &stubPage{url: "https://dapp.test/"}
	keplr := &stubPage{url: "chrome-extension://id/register.html"}
	popup := &stubPage{url: "chrome-extension://id/popup.html"}
	d.register(WindowMain, main)
	d.register(WindowKeplr, keplr)
	d.activate(WindowKeplr)
	d.register(WindowNotification, popup)
	d.activate(WindowNotification)

	// The register page closes after finishing while the popup is active
	keplr.close(d)
	assert.Equal(t, WindowNotification, d.ActiveName())

	popup.close(d)

	assert.Equal(t, WindowMain, d.ActiveName())
	page, err := d.activePage()
	require.NoError(t, err)
	assert.True(t, page == playwright.Page(main))
}

func TestForget_PreviousClosedBeforeRestore(t *testing.T) {
	d := New(Options{})
	defer d.Close()

	main := &stubPage{url: "https://dapp.test/"}
	keplr := &stubPage{url: "chrome-extension://id/register.html"}
	popup := &stubPage{url: "chrome-extension://id/popup.html"}
	d.register(WindowMain, main)
	d.register(WindowKeplr, keplr)
	d.activate(WindowKeplr)
	d.register(WindowNotification, popup)
	d.activate(WindowNotification)

	// Closed without a close event reaching the registry yet
	keplr.closed = true
	popup.close(d)

	assert.Equal(t, WindowMain, d.ActiveName())
}

func TestForget_InactiveWindow(t *testing.T) {
	d := New(Options{})
	defer d.Close()

	main := &stubPage{url: "https://dapp.test/"}
	keplr := &stubPage{url: "chrome-extension://id/register.html"}
	d.register(WindowMain, main)
	d.register(WindowKeplr, keplr)
	d.activate(WindowKeplr)

	main.close(d)

	assert.Equal(t, WindowKeplr, d.ActiveName())
	_, ok := d.window(WindowMain)
	assert.False(t, ok)
}
