//go:build acceptance
// +build acceptance

package acceptance

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

//go:embed testdata/wallet
var walletAssets embed.FS

// OnboardingData is what the fake register wizard posts when finished.
type OnboardingData struct {
	Entry      string   `json:"entry"`
	Secret     []string `json:"secret"`
	WalletName string   `json:"walletName"`
	Password   string   `json:"password"`
	Confirmed  bool     `json:"confirmed"`
}

// Decision is posted by the fake notification popup.
type Decision struct {
	Type     string `json:"type"`
	Decision string `json:"decision"`
}

// FakeWallet serves pages mimicking the screens of the wallet extension and a dApp.
// Interactions with the pages are recorded for assertions.
type FakeWallet struct {
	Server *httptest.Server
	URL    string

	mu          sync.Mutex
	onboarded   []OnboardingData
	decisions   []Decision
	disconnects int
}

// NewFakeWallet starts the fake wallet server.
func NewFakeWallet(t *testing.T) *FakeWallet {
	t.Helper()

	assets, err := fs.Sub(walletAssets, "testdata/wallet")
	if err != nil {
		t.Fatalf("loading wallet assets: %v", err)
	}

	fw := &FakeWallet{}

	mux := http.NewServeMux()
	mux.Handle("GET /", http.FileServerFS(assets))
	mux.HandleFunc("POST /api/onboarded", func(w http.ResponseWriter, r *http.Request) {
		var data OnboardingData
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fw.mu.Lock()
		fw.onboarded = append(fw.onboarded, data)
		fw.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/decision", func(w http.ResponseWriter, r *http.Request) {
		var d Decision
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fw.mu.Lock()
		fw.decisions = append(fw.decisions, d)
		fw.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/disconnect", func(w http.ResponseWriter, r *http.Request) {
		fw.mu.Lock()
		fw.disconnects++
		fw.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	fw.Server = httptest.NewServer(mux)
	fw.URL = fw.Server.URL
	return fw
}

func (fw *FakeWallet) Onboarded() []OnboardingData {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return append([]OnboardingData(nil), fw.onboarded...)
}

func (fw *FakeWallet) Decisions() []Decision {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return append([]Decision(nil), fw.decisions...)
}

func (fw *FakeWallet) Disconnects() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.disconnects
}

// Close shuts down the server.
func (fw *FakeWallet) Close() {
	fw.Server.Close()
}
