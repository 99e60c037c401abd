package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
)

// JSONResponse is what API handlers return. A response with a 4xx/5xx Code
// and no Body is answered as {"detail": Message}.
type JSONResponse struct {
	Error   error
	Message string
	Code    int
	Body    any
}

type detail struct {
	Detail string `json:"detail"`
}

type JSONHandler func(http.ResponseWriter, *http.Request) *JSONResponse

func (h JSONHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := h(w, r)

	code := resp.Code
	if code == 0 {
		code = http.StatusOK
	}

	if resp.Error != nil {
		attrs := []any{"err", resp.Error, "code", code, "request_id", RequestID(r.Context())}
		if code >= http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "Error occured", attrs...)
		} else {
			slog.WarnContext(r.Context(), "Request rejected", attrs...)
		}
	}

	body := resp.Body
	if body == nil && code >= http.StatusBadRequest {
		body = detail{Detail: resp.Message}
	}

	// Encode first so a body that cannot be encoded still answers 500.
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "Response encode failed", "err", err, "request_id", RequestID(r.Context()))
		code = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(detail{Detail: "Response could not be encoded"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "Error occured", "err", err)
	}
}

func ok(body any) *JSONResponse {
	return &JSONResponse{Code: http.StatusOK, Message: "OK", Body: body}
}

func fail(code int, msg string, err error) *JSONResponse {
	return &JSONResponse{Code: code, Message: msg, Error: err}
}
