package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
	ErrFailedToEnsureIndexes  = errors.New("failed to ensure mongo indexes")
)

// IsNotFoundError reports whether a single-document query matched nothing.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, mongo.ErrNoDocuments)
}

// IsDuplicateKeyError detects unique index violations (E11000).
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	return mongo.IsDuplicateKeyError(err)
}
