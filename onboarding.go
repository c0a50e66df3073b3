package keplrflow

import (
	"context"
	"fmt"
	"strconv"

	"github.com/networkteam/keplrflow/driver"
	"github.com/networkteam/keplrflow/pages"
)

// Onboard runs the register wizard of the extension to create or import a wallet.
//
// Steps run strictly in order and each waits for its element. The first
// element that does not appear fails the onboarding with a *StepError; the
// wallet is then in an unknown state and the session should be reset.
func (s *Session) Onboard(ctx context.Context, req OnboardingRequest) (_ bool, err error) {
	ctx, end := s.operation(ctx, "onboard")
	defer func() { end(err) }()

	if err := validateSecret(req.Secret); err != nil {
		return false, err
	}

	el := pages.Onboarding

	entry, method := el.ExistingWalletButton, el.UseRecoveryPhraseButton
	if req.NewAccount {
		entry, method = el.CreateWalletButton, el.ImportRecoveryPhraseButton
	}
	if err := s.waitAndClickText(ctx, "choose wallet entry", entry); err != nil {
		return false, err
	}
	if err := s.waitAndClickText(ctx, "choose import method", method); err != nil {
		return false, err
	}
	// The create path shows one more screen before the recovery phrase form
	if req.NewAccount {
		if err := s.waitAndClickText(ctx, "choose recovery phrase", el.UseRecoveryPhraseButton); err != nil {
			return false, err
		}
	}

	switch secret := req.Secret.(type) {
	case Phrase:
		err = s.importPhrase(ctx, secret)
	case PrivateKey:
		err = s.importPrivateKey(ctx, secret)
	}
	if err != nil {
		return false, err
	}

	err = s.step(ctx, "type wallet name", el.WalletInput, func(ctx context.Context) error {
		return s.driver.WaitAndType(ctx, el.WalletInput, s.options.WalletName)
	})
	if err != nil {
		return false, err
	}

	if err := s.typePasswordIfPresent(ctx, req.Password); err != nil {
		return false, err
	}

	if err := s.waitAndClick(ctx, "submit wallet data", el.SubmitWalletDataButton, driver.ClickOptions{Number: 1}); err != nil {
		return false, err
	}

	if err := s.waitForText(ctx, "wait for chain selection", el.PhraseSelectChain); err != nil {
		return false, err
	}
	if err := s.waitAndClick(ctx, "confirm chain selection", el.SubmitChainButton, driver.ClickOptions{}); err != nil {
		return false, err
	}

	if err := s.waitForText(ctx, "wait for account created", el.PhraseAccountCreated); err != nil {
		return false, err
	}

	// The extension may close or redirect after finishing, so nothing is awaited
	if err := s.waitAndClick(ctx, "finish onboarding", el.FinishButton, driver.ClickOptions{DontWait: true}); err != nil {
		return false, err
	}

	return true, nil
}

func (s *Session) importPhrase(ctx context.Context, phrase Phrase) error {
	el := pages.Onboarding

	if err := s.waitAndClickText(ctx, "choose phrase length", el.PhraseCount24); err != nil {
		return err
	}

	for index, word := range phrase.Words {
		err := s.step(ctx, "type recovery word "+strconv.Itoa(index), el.TextAreaSelector, func(ctx context.Context) error {
			return s.driver.WaitAndTypeByLocator(ctx, el.TextAreaSelector, word, index)
		})
		if err != nil {
			return err
		}
	}

	return s.waitAndClick(ctx, "submit recovery phrase", el.SubmitPhraseButton, driver.ClickOptions{})
}

func (s *Session) importPrivateKey(ctx context.Context, key PrivateKey) error {
	el := pages.Onboarding

	err := s.step(ctx, "choose private key", el.PhrasePrivateKey, func(ctx context.Context) error {
		return s.driver.ClickByText(ctx, el.PhrasePrivateKey, nil)
	})
	if err != nil {
		return err
	}

	err = s.step(ctx, "type private key", el.TextAreaSelector, func(ctx context.Context) error {
		return s.driver.WaitAndTypeByLocator(ctx, el.TextAreaSelector, key.Token, 0)
	})
	if err != nil {
		return err
	}

	return s.waitAndClick(ctx, "submit private key", el.SubmitPhraseButton, driver.ClickOptions{})
}

// typePasswordIfPresent fills password and confirmation only when the wizard variant shows a password field.
func (s *Session) typePasswordIfPresent(ctx context.Context, password string) error {
	el := pages.Onboarding

	var present bool
	err := s.step(ctx, "check password field", el.PasswordInput, func(ctx context.Context) error {
		var err error
		present, err = s.driver.DoesElementExist(ctx, el.PasswordInput)
		return err
	})
	if err != nil || !present {
		return err
	}

	err = s.step(ctx, "type password", el.PasswordInput, func(ctx context.Context) error {
		return s.driver.WaitAndType(ctx, el.PasswordInput, password)
	})
	if err != nil {
		return err
	}
	return s.step(ctx, "confirm password", el.ConfirmPasswordInput, func(ctx context.Context) error {
		return s.driver.WaitAndType(ctx, el.ConfirmPasswordInput, password)
	})
}

func (s *Session) waitAndClickText(ctx context.Context, name, text string) error {
	return s.stepIn(ctx, name, text, s.keplrWindow, func(ctx context.Context, w driver.Window) error {
		return s.driver.WaitAndClickByText(ctx, text, w)
	})
}

func (s *Session) waitAndClick(ctx context.Context, name, locator string, opts driver.ClickOptions) error {
	return s.stepIn(ctx, name, locator, s.keplrWindow, func(ctx context.Context, w driver.Window) error {
		return s.driver.WaitAndClick(ctx, locator, w, opts)
	})
}

func (s *Session) waitForText(ctx context.Context, name, text string) error {
	return s.stepIn(ctx, name, text, s.keplrWindow, func(ctx context.Context, w driver.Window) error {
		return s.driver.WaitForByText(ctx, text, w)
	})
}

func validateSecret(secret SecretMaterial) error {
	switch secret := secret.(type) {
	case Phrase:
		if len(secret.Words) == 0 {
			return fmt.Errorf("%w: empty recovery phrase", ErrInvalidSecret)
		}
	case PrivateKey:
		if secret.Token == "" {
			return fmt.Errorf("%w: empty private key", ErrInvalidSecret)
		}
	default:
		return fmt.Errorf("%w: no secret given", ErrInvalidSecret)
	}
	return nil
}
