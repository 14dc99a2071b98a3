// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing HTMX responses.
// It provides a fluent API for building HX-Trigger headers and consistent
// response formatting.

package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"livrocaixa/internal/notify"
)

// Client events raised through HX-Trigger.
const (
	EventFormReset           = "form:reset"
	EventTransactionsChanged = "transactions:changed"
	EventOpenWindow          = "open-window"
	EventPrintReport         = "print-report"
	EventOCRAmount           = "ocr:amount"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	notices    []notify.Notice
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerFormReset clears the entry form and re-defaults its date.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(EventFormReset, struct{}{})
}

// TriggerTransactionsChanged makes every list on the page re-fetch.
func (b *HTMXResponseBuilder) TriggerTransactionsChanged() *HTMXResponseBuilder {
	return b.Trigger(EventTransactionsChanged, struct{}{})
}

// TriggerOpenWindow asks the client to open url in a new browsing context.
func (b *HTMXResponseBuilder) TriggerOpenWindow(url string) *HTMXResponseBuilder {
	return b.Trigger(EventOpenWindow, map[string]string{"url": url})
}

func (b *HTMXResponseBuilder) TriggerPrint() *HTMXResponseBuilder {
	return b.Trigger(EventPrintReport, struct{}{})
}

// TriggerOCRAmount pre-fills the amount field with a two-decimal value.
func (b *HTMXResponseBuilder) TriggerOCRAmount(value string) *HTMXResponseBuilder {
	return b.Trigger(EventOCRAmount, map[string]string{"valor": value})
}

// Notify queues a notice. Several notices in one response are delivered
// together and stack on the client.
func (b *HTMXResponseBuilder) Notify(severity notify.Severity, message string) *HTMXResponseBuilder {
	b.notices = append(b.notices, notify.New(severity, message))
	return b
}

func (b *HTMXResponseBuilder) Success(message string) *HTMXResponseBuilder {
	return b.Notify(notify.Success, message)
}

func (b *HTMXResponseBuilder) Warning(message string) *HTMXResponseBuilder {
	return b.Notify(notify.Warning, message)
}

func (b *HTMXResponseBuilder) Danger(message string) *HTMXResponseBuilder {
	return b.Notify(notify.Danger, message)
}

// NoSwap keeps whatever the target currently shows.
func (b *HTMXResponseBuilder) NoSwap() *HTMXResponseBuilder {
	return b.Header("HX-Reswap", "none")
}

// Refresh makes the client reload the whole page.
func (b *HTMXResponseBuilder) Refresh() *HTMXResponseBuilder {
	return b.Header("HX-Refresh", "true")
}

// Header adds a custom header to the response.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the response body as bytes.
func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html []byte) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = html
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.notices) > 0 {
		b.triggers[notify.TriggerEvent] = b.notices
	}
	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set("HX-Trigger", asciiJSON(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// asciiJSON escapes non-ASCII runes as \uXXXX. Browsers read header bytes
// as Latin-1, so accented messages must not travel as raw UTF-8.
func asciiJSON(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, r := range string(b) {
		if r < utf8.RuneSelf {
			sb.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, "\\u%04x\\u%04x", r1, r2)
			continue
		}
		fmt.Fprintf(&sb, "\\u%04x", r)
	}
	return sb.String()
}

// Stale answers a request whose response was superseded by a newer one.
// 204 makes HTMX leave the target untouched.
func Stale(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ErrorResponse creates an error response carrying a danger notice and an
// inline message. The message is HTML-escaped for safety.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	escapedMsg := template.HTMLEscapeString(message)
	return NewHTMXResponse().
		Status(statusCode).
		Danger(message).
		BodyHTML([]byte(`<div class="alert alert-danger">` + escapedMsg + `</div>`))
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}
