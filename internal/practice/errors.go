package practice

import (
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidRange     = errors.New("invalid date range")

	// package specific errors wrap these two
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type storeError struct {
	op  string
	err error
}

func (e *storeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.op, ErrStoreUnavailable, e.err)
}

func (e *storeError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.err}
}

// StoreError marks err as a store failure of operation op. The result matches
// both ErrStoreUnavailable and err with errors.Is.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *storeError
	if errors.As(err, &se) {
		return err
	}
	return &storeError{op: op, err: err}
}

// HTTPStatus maps an error of the taxonomy to a response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidRange), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HTTPError logs err and replies with msg and the status of err.
func HTTPError(w http.ResponseWriter, err error, msg string) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s: %s", msg, err)
	} else {
		log.Debugf("%s: %s", msg, err)
	}
	http.Error(w, msg, status)
}
