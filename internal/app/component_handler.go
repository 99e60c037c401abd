package app

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/felixbrock/flightprice/internal/components"
)

type ComponentResponse struct {
	Error       error
	Message     string
	Code        int
	ContentType string
	Component   components.Component
}

type ComponentHandler func(http.ResponseWriter, *http.Request) *ComponentResponse

func (ch ComponentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := ch(w, r)

	if resp.Error != nil {
		slog.ErrorContext(r.Context(), "Error occured", "err", resp.Error, "request_id", RequestID(r.Context()))
	}

	code := resp.Code
	if code == 0 {
		code = http.StatusOK
	}
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}

	// Render before writing the header so a template failure can still be
	// reported as a 500.
	var buf bytes.Buffer
	if err := resp.Component.Render(r.Context(), &buf); err != nil {
		slog.ErrorContext(r.Context(), "Error occured", "err", err, "request_id", RequestID(r.Context()))
		http.Error(w, "templ: failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
