package report_test

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/keplrflow/collector"
	"github.com/networkteam/keplrflow/report"
)

func recordOperation(journal *collector.EventCollector, name string, steps ...collector.Step) {
	ctx := journal.StartEvent(context.Background())
	var err error
	for _, step := range steps {
		journal.CollectEvent(ctx, time.Now(), step)
		if step.Err != nil {
			err = step.Err
		}
	}
	journal.EndEvent(ctx, collector.Operation{Name: name, Err: err})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_Root(t *testing.T) {
	journal := collector.NewEventCollector()
	defer journal.Close()

	recordOperation(journal, "onboard",
		collector.Step{Name: "choose wallet entry", Target: "Import an existing wallet"},
	)
	recordOperation(journal, "accept-access",
		collector.Step{Name: "switch to notification", Target: "popup.html", Err: errors.New("element did not appear in time")},
	)

	h := report.NewHandler(journal)
	rec := get(t, h, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "onboard")
	assert.Contains(t, body, "choose wallet entry")
	assert.Contains(t, body, "accept-access")
	assert.Contains(t, body, "element did not appear in time")
	assert.Contains(t, body, ">failed<")
	assert.Contains(t, body, ">ok<")
	assert.Less(t, strings.Index(body, "accept-access"), strings.Index(body, "onboard"), "newest operation first")
	assert.NotContains(t, body, `href="/logs"`)
}

func TestHandler_RootEmpty(t *testing.T) {
	journal := collector.NewEventCollector()
	defer journal.Close()

	rec := get(t, report.NewHandler(journal), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No operations recorded yet.")
}

func TestHandler_Step(t *testing.T) {
	journal := collector.NewEventCollector()
	defer journal.Close()

	recordOperation(journal, "onboard", collector.Step{
		Name:     "wait for account created",
		Target:   "Account Created!",
		Window:   "chrome-extension://abc/register.html",
		Err:      errors.New("element did not appear in time"),
		Snapshot: `<html><body><div class="error">Oops</div></body></html>`,
	})
	step := journal.GetEvents(1)[0].Children[0]

	h := report.NewHandler(journal)

	rec := get(t, h, "/step/"+step.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "wait for account created")
	assert.Contains(t, body, "Account Created!")
	assert.Contains(t, body, `<dt class="font-semibold">Window</dt><dd class="font-mono">chrome-extension://abc/register.html</dd>`)
	assert.Contains(t, body, `id="snapshot"`)
	assert.Contains(t, body, `class="chroma"`)
	assert.Contains(t, body, "Oops")
	assert.NotContains(t, body, `<div class="error">`, "snapshot must be escaped")

	t.Run("invalid id", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(t, h, "/step/not-a-uuid").Code)
	})
	t.Run("unknown id", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(t, h, "/step/0195a4c2-6a3e-7b7e-8f3c-6d8e9a0b1c2d").Code)
	})
	t.Run("operation id", func(t *testing.T) {
		op := journal.GetEvents(1)[0]
		assert.Equal(t, http.StatusNotFound, get(t, h, "/step/"+op.ID.String()).Code)
	})
}

func TestHandler_PathPrefix(t *testing.T) {
	journal := collector.NewEventCollector()
	defer journal.Close()
	recordOperation(journal, "onboard", collector.Step{Name: "choose wallet entry"})
	step := journal.GetEvents(1)[0].Children[0]

	h := report.NewHandler(journal, report.WithPathPrefix("/_keplr"))
	body := get(t, h, "/").Body.String()

	assert.Contains(t, body, `href="/_keplr/step/`+step.ID.String()+`"`)
	assert.Contains(t, body, `action="/_keplr/clear"`)
}

func TestHandler_TruncateAfter(t *testing.T) {
	journal := collector.NewEventCollector()
	defer journal.Close()
	for range 5 {
		recordOperation(journal, "confirm-transaction")
	}

	body := get(t, report.NewHandler(journal, report.WithTruncateAfter(2)), "/").Body.String()
	assert.Equal(t, 2, strings.Count(body, "confirm-transaction"))
	assert.Contains(t, body, "Showing the last 2 operations.")
}

func TestHandler_Logs(t *testing.T) {
	journal := collector.NewEventCollector()
	defer journal.Close()

	h := report.NewHandler(journal)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/logs").Code)

	logs := collector.NewLogCollector(10)
	defer logs.Close()
	logger := slog.New(collector.NewSlogLogCollectorHandler(logs, collector.CollectSlogLogsOptions{Level: slog.LevelDebug}))
	logger.Info("Resolved extension identity", slog.String("extensionId", "dmkamcknogkgcdfhhbddcghachkejeap"))

	h = report.NewHandler(journal, report.WithLogCollector(logs))
	rec := get(t, h, "/logs")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Resolved extension identity")
	assert.Contains(t, body, "extensionId=dmkamcknogkgcdfhhbddcghachkejeap")
	assert.Contains(t, body, ">INFO<")
	assert.Contains(t, get(t, h, "/").Body.String(), `href="/logs"`)
}

func TestHandler_Clear(t *testing.T) {
	journal := collector.NewEventCollector()
	defer journal.Close()
	recordOperation(journal, "onboard")

	h := report.NewHandler(journal)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clear", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Empty(t, journal.GetEvents(10))
}

func TestHandler_EventsSSE(t *testing.T) {
	journal := collector.NewEventCollector()
	defer journal.Close()

	srv := httptest.NewServer(report.NewHandler(journal))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events-sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: keepalive", lines.Text())

	// The subscription is registered before the keepalive is written
	recordOperation(journal, "disconnect-wallet", collector.Step{Name: "disconnect all"})

	var data string
	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "data: <li") {
			data = lines.Text()
			break
		}
	}
	assert.Contains(t, data, "disconnect-wallet")
	assert.Contains(t, data, "disconnect all")
}
