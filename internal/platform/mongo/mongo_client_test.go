package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DATABASE", "db_acoes")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, "mongodb://localhost:27017", cfg.URI)
	assert.Equal(t, "db_acoes", cfg.Database)
}

func TestNewMongoClient_MissingURI(t *testing.T) {
	client, err := NewMongoClient(context.Background(), Config{})

	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestNewMongoClient_InvalidURI(t *testing.T) {
	client, err := NewMongoClient(context.Background(), Config{URI: "not-a-mongo-uri"})

	assert.Error(t, err)
	assert.Nil(t, client)
}
