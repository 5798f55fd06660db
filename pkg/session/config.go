package session

import "time"

type Config struct {
	CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"ignews.session-token"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	KeyPrefix  string        `env:"SESSION_KEY_PREFIX" envDefault:"ignews:session:"`
}
