//go:build acceptance
// +build acceptance

package acceptance

import (
	"context"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/keplrflow"
	"github.com/networkteam/keplrflow/collector"
	"github.com/networkteam/keplrflow/driver"
	"github.com/networkteam/keplrflow/driver/pwdriver"
)

const fakeExtensionID = "fakekeplrextensionidaaaaaaaaaaaa"

// fakeExtensionDriver reports the fake wallet as installed extension,
// since a plain browser context has no extensions.
type fakeExtensionDriver struct {
	*pwdriver.Driver
}

func (d fakeExtensionDriver) ExtensionsData(ctx context.Context) (map[string]driver.ExtensionData, error) {
	return map[string]driver.ExtensionData{
		"keplr": {Name: "Keplr", ID: fakeExtensionID, Version: "0.12.28"},
	}, nil
}

// TestFixtures bundles all commonly needed test fixtures.
type TestFixtures struct {
	Wallet  *FakeWallet
	PW      *PlaywrightFixture
	Ctx     playwright.BrowserContext
	Driver  fakeExtensionDriver
	Journal *collector.EventCollector
}

type fixtureOptions struct {
	timeout             time.Duration
	notificationTimeout time.Duration
}

type fixtureOption func(*fixtureOptions)

func withTimeout(timeout time.Duration) fixtureOption {
	return func(o *fixtureOptions) { o.timeout = timeout }
}

func withNotificationTimeout(timeout time.Duration) fixtureOption {
	return func(o *fixtureOptions) { o.notificationTimeout = timeout }
}

// WithTestFixtures creates all fixtures, registers cleanup with t.Cleanup(), and calls the test function.
// The driver is attached to the browser context but not initialized.
func WithTestFixtures(t *testing.T, fn func(t *testing.T, f *TestFixtures), opts ...fixtureOption) {
	t.Helper()

	options := fixtureOptions{
		timeout:             5 * time.Second,
		notificationTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	wallet := NewFakeWallet(t)
	t.Cleanup(func() { wallet.Close() })

	pw := NewPlaywrightFixture(t)
	t.Cleanup(func() { pw.Close() })

	ctx := pw.NewContext(t)
	t.Cleanup(func() { ctx.Close() })

	journal := collector.NewEventCollector()
	t.Cleanup(journal.Close)

	drv := pwdriver.New(pwdriver.Options{
		Context:             ctx,
		Timeout:             options.timeout,
		NotificationTimeout: options.notificationTimeout,
		NotificationURL:     wallet.URL + "/popup.html",
		PermissionURL:       wallet.URL + "/popup.html#/setting/security/permission",
		OnboardingURL:       "/register.html",
	})
	t.Cleanup(func() { drv.Close() })

	fn(t, &TestFixtures{
		Wallet:  wallet,
		PW:      pw,
		Ctx:     ctx,
		Driver:  fakeExtensionDriver{Driver: drv},
		Journal: journal,
	})
}

// Session returns an initialized session with resolved identity, without onboarding.
func (f *TestFixtures) Session(t *testing.T, options keplrflow.Options) *keplrflow.Session {
	t.Helper()

	require.NoError(t, f.Driver.Init(context.Background()))

	options.Journal = f.Journal
	sess := keplrflow.NewSessionWithOptions(f.Driver, options)
	_, err := sess.ResolveIdentity(context.Background())
	require.NoError(t, err)
	return sess
}
