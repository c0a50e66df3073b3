package keplrflow_test

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/networkteam/keplrflow"
)

func TestParseSecretMaterial(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected keplrflow.SecretMaterial
	}{
		{
			name:     "private key",
			input:    "f1a2b3c4d5e6",
			expected: keplrflow.PrivateKey{Token: "f1a2b3c4d5e6"},
		},
		{
			name:     "phrase",
			input:    "alpha beta gamma",
			expected: keplrflow.Phrase{Words: []string{"alpha", "beta", "gamma"}},
		},
		{
			name:     "phrase with repeated spaces",
			input:    "  alpha   beta ",
			expected: keplrflow.Phrase{Words: []string{"alpha", "beta"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, keplrflow.ParseSecretMaterial(tt.input))
		})
	}
}

var wordGen = rapid.StringMatching(`[a-z]{1,8}`)

func TestParseSecretMaterial_PhraseWordsInOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(wordGen, 2, 24).Draw(t, "words")

		secret := keplrflow.ParseSecretMaterial(strings.Join(words, " "))

		phrase, ok := secret.(keplrflow.Phrase)
		if !ok {
			t.Fatalf("expected phrase, got %T", secret)
		}
		if !assert.ObjectsAreEqual(words, phrase.Words) {
			t.Fatalf("expected words %v, got %v", words, phrase.Words)
		}
	})
}

func TestParseSecretMaterial_TokenWithoutSpaceIsPrivateKey(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		token := rapid.StringMatching(`[0-9a-fA-F]{1,64}`).Draw(t, "token")

		secret := keplrflow.ParseSecretMaterial(token)

		if secret != (keplrflow.PrivateKey{Token: token}) {
			t.Fatalf("expected private key %q, got %#v", token, secret)
		}
	})
}

// Every word of a phrase is typed into its own input, in order, exactly once.
func TestOnboard_TypesEveryWordAtItsIndex(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		words := rapid.SliceOfN(wordGen, 2, 24).Draw(rt, "words")

		d := newFakeDriver()
		sess := keplrflow.NewSession(d)

		ok, err := sess.Onboard(context.Background(), keplrflow.OnboardingRequest{
			Secret: keplrflow.Phrase{Words: words},
		})
		require.NoError(rt, err)
		require.True(rt, ok)

		typed := d.callsWithPrefix("WaitAndTypeByLocator(")
		require.Len(rt, typed, len(words))
		for i, word := range words {
			require.Contains(rt, typed[i], ", "+word+", ")
			require.True(rt, strings.HasSuffix(typed[i], ", "+strconv.Itoa(i)+")"), "call %q should target index %d", typed[i], i)
		}
	})
}
