package keplrflow

import "strings"

// SecretMaterial is what a wallet is imported from: a Phrase or a PrivateKey.
type SecretMaterial interface {
	isSecretMaterial()
}

// Phrase is a recovery phrase, one entry per word in order.
type Phrase struct {
	Words []string
}

// PrivateKey is a single private key token.
type PrivateKey struct {
	Token string
}

func (Phrase) isSecretMaterial()     {}
func (PrivateKey) isSecretMaterial() {}

// ParseSecretMaterial interprets a configured secret string: any space makes it
// a recovery phrase split into words, otherwise it is a private key.
func ParseSecretMaterial(s string) SecretMaterial {
	if strings.Contains(s, " ") {
		return Phrase{Words: strings.Fields(s)}
	}
	return PrivateKey{Token: s}
}

// OnboardingRequest describes the wallet to create or import.
type OnboardingRequest struct {
	Secret   SecretMaterial
	Password string
	// NewAccount selects the "create a new wallet" entry of the wizard instead of "import an existing wallet".
	NewAccount bool
}
