package mongo_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	driver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/ignews/pkg/mongo"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.False(t, mongo.IsNotFoundError(nil))
	assert.False(t, mongo.IsNotFoundError(errors.New("boom")))
	assert.True(t, mongo.IsNotFoundError(driver.ErrNoDocuments))
	assert.True(t, mongo.IsNotFoundError(fmt.Errorf("find user: %w", driver.ErrNoDocuments)))
}

func TestIsDuplicateKeyError(t *testing.T) {
	t.Parallel()

	assert.False(t, mongo.IsDuplicateKeyError(nil))
	assert.False(t, mongo.IsDuplicateKeyError(errors.New("boom")))

	dup := driver.WriteException{
		WriteErrors: []driver.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	assert.True(t, mongo.IsDuplicateKeyError(dup))
}
