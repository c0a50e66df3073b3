// Package pages holds the locators and fixed texts of the Keplr extension screens.
//
// Text entries are matched with text selectors, everything else is a CSS locator.
package pages

// Onboarding lists the elements of the Keplr register wizard.
var Onboarding = struct {
	CreateWalletButton         string
	ExistingWalletButton       string
	ImportRecoveryPhraseButton string
	UseRecoveryPhraseButton    string
	PhraseCount24              string
	PhrasePrivateKey           string
	TextAreaSelector           string
	SubmitPhraseButton         string
	WalletInput                string
	WalletName                 string
	PasswordInput              string
	ConfirmPasswordInput       string
	SubmitWalletDataButton     string
	PhraseSelectChain          string
	SubmitChainButton          string
	PhraseAccountCreated       string
	FinishButton               string
}{
	CreateWalletButton:         "Create a new wallet",
	ExistingWalletButton:       "Import an existing wallet",
	ImportRecoveryPhraseButton: "Import existing recovery phrase",
	UseRecoveryPhraseButton:    "Use recovery phrase or private key",
	PhraseCount24:              "24 words",
	PhrasePrivateKey:           "Private key",
	TextAreaSelector:           `input[type="password"], textarea`,
	SubmitPhraseButton:         `button[type="submit"]`,
	WalletInput:                `input[name="name"]`,
	WalletName:                 "My Wallet",
	PasswordInput:              `input[name="password"]`,
	ConfirmPasswordInput:       `input[name="confirmPassword"]`,
	SubmitWalletDataButton:     `button[type="submit"]`,
	PhraseSelectChain:          "Select Chains",
	SubmitChainButton:          `button:has-text("Save")`,
	PhraseAccountCreated:       "Account Created!",
	FinishButton:               `button:has-text("Finish")`,
}
