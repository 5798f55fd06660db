package redis

import "errors"

var (
	ErrEmptyConnectionURL           = errors.New("REDIS_URL is empty")
	ErrFailedToParseRedisConnString = errors.New("invalid REDIS_URL")
	ErrRedisNotReady                = errors.New("redis not reachable after retries")
	ErrHealthcheckFailed            = errors.New("redis ping failed")
)
