//go:build acceptance
// +build acceptance

package acceptance

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
)

// DAppPage is the page object of the fake dApp opening wallet requests.
type DAppPage struct {
	Page playwright.Page
	t    *testing.T
}

// NewDAppPage opens the fake dApp. A non-empty account is shown as connected account on the page.
func NewDAppPage(t *testing.T, ctx playwright.BrowserContext, walletURL, account string) *DAppPage {
	t.Helper()

	page, err := ctx.NewPage()
	require.NoError(t, err)

	url := walletURL + "/dapp.html"
	if account != "" {
		url += "?account=" + account
	}
	_, err = page.Goto(url)
	require.NoError(t, err)

	return &DAppPage{Page: page, t: t}
}

// RequestAccess opens an access request popup.
func (dp *DAppPage) RequestAccess() {
	dp.t.Helper()
	require.NoError(dp.t, dp.Page.Locator("#connect").Click(), "failed to request access")
}

// RequestTransaction opens a transaction popup.
func (dp *DAppPage) RequestTransaction() {
	dp.t.Helper()
	require.NoError(dp.t, dp.Page.Locator("#send").Click(), "failed to request transaction")
}

// OpenRegister opens the onboarding wizard in a new page, the way the extension does after install.
func OpenRegister(t *testing.T, ctx playwright.BrowserContext, walletURL, query string) playwright.Page {
	t.Helper()

	page, err := ctx.NewPage()
	require.NoError(t, err)

	url := walletURL + "/register.html"
	if query != "" {
		url += "?" + query
	}
	_, err = page.Goto(url)
	require.NoError(t, err)
	return page
}
