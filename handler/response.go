package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

type jsonResponse struct {
	status  int
	headers http.Header
	body    any
}

// Render encodes before touching w so an encoding error can still be
// answered by the error handler.
func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(j.body); err != nil {
		return fmt.Errorf("encode json response: %w", err)
	}

	for k, vs := range j.headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	_, err := w.Write(buf.Bytes())
	return err
}

type JSONOption func(*jsonResponse)

func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

func WithJSONHeader(key, value string) JSONOption {
	return func(r *jsonResponse) { r.headers.Add(key, value) }
}

// JSON encodes v as the response body, 200 unless overridden.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, headers: http.Header{}, body: v}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type textResponse struct {
	status int
	body   string
}

func (t textResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(t.status)
	_, err := io.WriteString(w, t.body)
	return err
}

// Text writes body as plain text.
func Text(status int, body string) Response {
	return textResponse{status: status, body: body}
}

type redirectResponse struct {
	url  string
	code int
}

func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	http.Redirect(w, req, r.url, r.code)
	return nil
}

// Redirect answers 303 See Other.
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusSeeOther}
}

func RedirectWithCode(url string, code int) Response {
	return redirectResponse{url: url, code: code}
}

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty answers 204 No Content.
func Empty() Response {
	return emptyResponse{status: http.StatusNoContent}
}

func EmptyWithStatus(status int) Response {
	return emptyResponse{status: status}
}

type templResponse struct {
	component templ.Component
}

func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.component.Render(r.Context(), w)
}

// Templ renders a templ component as an HTML page.
func Templ(component templ.Component) Response {
	return templResponse{component: component}
}

// Error returns err so the configured ErrorHandler renders it.
func Error(err error) Response {
	return errorResponse{err: err}
}

type errorResponse struct {
	err error
}

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}
