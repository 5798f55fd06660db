package handler

import (
	"errors"
	"net/http"
)

var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError carries a status code and a stable machine-readable key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string { return e.Key }

var (
	ErrBadRequest   = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrForbidden    = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound     = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrInternal     = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
	ErrBadGateway   = HTTPError{Code: http.StatusBadGateway, Key: "bad_gateway"}
)
