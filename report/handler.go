// Package report serves the step journal of wallet sessions as HTML.
package report

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/a-h/templ"
	"github.com/gofrs/uuid"

	"github.com/networkteam/keplrflow/collector"
	"github.com/networkteam/keplrflow/report/views"
)

type Handler struct {
	journal *collector.EventCollector
	options handlerOptions

	mux http.Handler
}

// NewHandler creates a report over the operations recorded in journal.
func NewHandler(journal *collector.EventCollector, opts ...HandlerOption) *Handler {
	options := handlerOptions{
		TruncateAfter: DefaultTruncateAfter,
	}
	for _, opt := range opts {
		opt(&options)
	}

	mux := http.NewServeMux()
	handler := &Handler{
		journal: journal,
		options: options,
		mux:     setHandlerOptions(options, mux),
	}

	mux.HandleFunc("GET /{$}", handler.root)
	mux.HandleFunc("GET /step/{stepId}", handler.getStep)
	mux.HandleFunc("GET /logs", handler.getLogs)
	mux.HandleFunc("GET /events-sse", handler.getEventsSSE)
	mux.HandleFunc("POST /clear", handler.clear)

	return handler
}

func setHandlerOptions(options handlerOptions, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := views.WithHandlerOptions(r.Context(), views.HandlerOptions{
			PathPrefix:    options.PathPrefix,
			TruncateAfter: options.TruncateAfter,
			HasLogs:       options.LogCollector != nil,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	events := h.journal.GetEvents(h.options.TruncateAfter)
	slices.Reverse(events)

	templ.Handler(views.Layout("Keplr operations", views.OperationList(views.OperationListProps{
		Events:        events,
		TruncateAfter: h.options.TruncateAfter,
	}))).ServeHTTP(w, r)
}

func (h *Handler) getStep(w http.ResponseWriter, r *http.Request) {
	stepID, err := uuid.FromString(r.PathValue("stepId"))
	if err != nil {
		http.Error(w, "Invalid step id", http.StatusBadRequest)
		return
	}

	evt, exists := h.journal.GetEvent(stepID)
	if !exists {
		http.Error(w, "Step not found", http.StatusNotFound)
		return
	}
	step, ok := evt.Data.(collector.Step)
	if !ok {
		http.Error(w, "Event is not a step", http.StatusNotFound)
		return
	}

	templ.Handler(views.Layout(step.Name, views.StepDetail(evt, step))).ServeHTTP(w, r)
}

func (h *Handler) getLogs(w http.ResponseWriter, r *http.Request) {
	if h.options.LogCollector == nil {
		http.Error(w, "Logs are not collected", http.StatusNotFound)
		return
	}

	records := h.options.LogCollector.Tail(int(h.options.TruncateAfter))
	slices.Reverse(records)

	templ.Handler(views.Layout("Keplr logs", views.LogList(records))).ServeHTTP(w, r)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	h.journal.Clear()
	if h.options.LogCollector != nil {
		h.options.LogCollector.Clear()
	}
	http.Redirect(w, r, h.options.PathPrefix+"/", http.StatusSeeOther)
}

// getEventsSSE streams finished operations as rendered list items
func (h *Handler) getEventsSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ctx := r.Context()
	eventCh := h.journal.Subscribe(ctx)

	fmt.Fprintf(w, "event: keepalive\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-eventCh:
			if !ok {
				return
			}

			var item strings.Builder
			if err := views.EventListItem(evt).Render(ctx, &item); err != nil {
				return
			}
			// A data line must not contain line breaks
			fmt.Fprintf(w, "event: new-event\ndata: %s\n\n", strings.ReplaceAll(item.String(), "\n", " "))
			flusher.Flush()
		}
	}
}
