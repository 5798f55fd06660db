package billing

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrInvalidFailureStatus = errors.New("webhook failure status must be 200 or 500")

// Config controls the webhook endpoint.
type Config struct {
	// FailureStatus is the status sent when a verified event could not be
	// applied. 200 acknowledges the delivery, 500 makes Stripe retry it.
	FailureStatus int   `env:"WEBHOOK_FAILURE_STATUS" envDefault:"200"`
	MaxBodyBytes  int64 `env:"WEBHOOK_MAX_BODY_BYTES" envDefault:"65536"`
}

func (c Config) Validate() error {
	switch c.FailureStatus {
	case http.StatusOK, http.StatusInternalServerError:
	default:
		return fmt.Errorf("%w: got %d", ErrInvalidFailureStatus, c.FailureStatus)
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("webhook max body bytes must be positive")
	}
	return nil
}
