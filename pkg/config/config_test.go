package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_VectorConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("VECTOR_STORE_PATH", "/tmp/vectors")
	os.Setenv("VECTOR_BACKEND", "typesense")
	os.Setenv("VECTOR_DIMENSION", "512")
	defer func() {
		os.Unsetenv("VECTOR_STORE_PATH")
		os.Unsetenv("VECTOR_BACKEND")
		os.Unsetenv("VECTOR_DIMENSION")
	}()

	// Load config
	cfg, err := Load()
	assert.NoError(t, err)

	// Verify vector config
	assert.Equal(t, "/tmp/vectors", cfg.Vector.StorePath)
	assert.Equal(t, "typesense", cfg.Vector.Backend)
	assert.Equal(t, 512, cfg.Vector.Dimension)
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("VECTOR_STORE_PATH")
	os.Unsetenv("VECTOR_BACKEND")
	os.Unsetenv("VECTOR_EMBEDDER")

	cfg, err := Load()
	assert.NoError(t, err)

	// Verify defaults
	assert.Equal(t, "data/vector_stores", cfg.Vector.StorePath)
	assert.Equal(t, "file", cfg.Vector.Backend)
	assert.Equal(t, "hashing", cfg.Vector.Embedder)
	assert.Equal(t, 256, cfg.Vector.Dimension)
	assert.Equal(t, "medicine_vending", cfg.Database.Database)
}
