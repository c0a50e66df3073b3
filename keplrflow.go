// Package keplrflow drives the Keplr wallet extension through onboarding and
// approval flows for end-to-end tests.
//
// A Session wraps a driver.Driver and keeps the state of one test session:
// the resolved extension identity and, optionally, a journal of every browser
// step for the report. Typical use:
//
//	sess, err := keplrflow.InitialSetup(ctx, drv, keplrflow.OnboardingRequest{
//		Secret:     keplrflow.ParseSecretMaterial(os.Getenv("SECRET_WORDS")),
//		Password:   "Tester@1234",
//		NewAccount: false,
//	}, keplrflow.Options{})
//	...
//	ok, err := sess.AcceptAccess(ctx)
package keplrflow

import (
	"errors"
	"log/slog"

	"github.com/networkteam/keplrflow/collector"
	"github.com/networkteam/keplrflow/pages"
)

const (
	// DefaultExtensionName is the key of the wallet extension in driver.Driver.ExtensionsData.
	DefaultExtensionName = "keplr"
	// DefaultActiveTabName is the logical name given to the extension tab during setup.
	DefaultActiveTabName = "keplr"
	// DefaultGrantedMarker is the account address looked for when no approval popup appears.
	DefaultGrantedMarker = "agoric1p2aqakv3ulz4qfy2nut86j9gx0dx0yw09h96md"
)

var (
	// ErrIdentityNotResolved is returned by operations that need the extension ID before ResolveIdentity ran.
	ErrIdentityNotResolved = errors.New("extension identity not resolved")
	// ErrExtensionNotInstalled is returned when the wallet extension is missing from the browser.
	ErrExtensionNotInstalled = errors.New("wallet extension not installed")
	// ErrUnsupportedVersion is returned when the installed extension does not satisfy Options.VersionConstraint.
	ErrUnsupportedVersion = errors.New("unsupported extension version")
	// ErrInvalidSecret is returned for empty recovery phrases or private keys.
	ErrInvalidSecret = errors.New("invalid secret material")
)

type Options struct {
	// Logger receives step logs.
	// Default: slog.Default()
	Logger *slog.Logger
	// Journal records every operation and step when set.
	// Default: nil, nothing is recorded
	Journal *collector.EventCollector

	// ExtensionName selects the extension from the installed extensions.
	// Default: DefaultExtensionName
	ExtensionName string
	// VersionConstraint is a semver constraint (e.g. ">= 0.12.0") the extension version must satisfy.
	// Default: "", any version
	VersionConstraint string
	// ActiveTabName is assigned to the extension tab by InitialSetup.
	// Default: DefaultActiveTabName
	ActiveTabName string
	// WalletName is typed into the wallet name field during onboarding.
	// Default: pages.Onboarding.WalletName
	WalletName string
	// AccessGranted decides whether a page shows that access was granted without an approval popup.
	// Default: TextMarker(DefaultGrantedMarker)
	AccessGranted AccessGrantedFunc

	// CloseDriver closes the driver on Session.Close if it implements driver.Closer.
	CloseDriver bool
}

// DefaultOptions returns the options used for zero values.
func DefaultOptions() Options {
	return Options{
		Logger:        slog.Default(),
		ExtensionName: DefaultExtensionName,
		ActiveTabName: DefaultActiveTabName,
		WalletName:    pages.Onboarding.WalletName,
		AccessGranted: TextMarker(DefaultGrantedMarker),
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.Logger == nil {
		o.Logger = defaults.Logger
	}
	if o.ExtensionName == "" {
		o.ExtensionName = defaults.ExtensionName
	}
	if o.ActiveTabName == "" {
		o.ActiveTabName = defaults.ActiveTabName
	}
	if o.WalletName == "" {
		o.WalletName = defaults.WalletName
	}
	if o.AccessGranted == nil {
		o.AccessGranted = defaults.AccessGranted
	}
	return o
}
