package cookie

import "errors"

var (
	ErrNoSecret       = errors.New("cookie: at least one secret is required")
	ErrSecretTooShort = errors.New("cookie: secret is too short")
	// ErrDecryptionFailed means no configured secret opens the value.
	ErrDecryptionFailed = errors.New("cookie: value cannot be decrypted")
	ErrCookieNotFound   = errors.New("cookie: not found")
	ErrInvalidFormat    = errors.New("cookie: malformed value")
)
