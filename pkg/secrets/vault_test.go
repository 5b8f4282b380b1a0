package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vaultServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != "test-token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestApplyVaultSecrets_KVv2(t *testing.T) {
	server := vaultServer(t, `{"data":{"data":{"DB_PASSWORD":"hunter2","OPENAI_API_KEY":"sk-test","DB_PORT":5433}}}`)

	t.Setenv("DB_PASSWORD", "")
	os.Unsetenv("DB_PASSWORD")
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")
	t.Setenv("DB_PORT", "")
	os.Unsetenv("DB_PORT")

	result, err := ApplyVaultSecrets(context.Background(), VaultConfig{
		Enabled:   true,
		Addr:      server.URL,
		Token:     "test-token",
		Mount:     "secret",
		Path:      "medvend/api",
		KVVersion: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Loaded)
	assert.Equal(t, "hunter2", os.Getenv("DB_PASSWORD"))
	assert.Equal(t, "sk-test", os.Getenv("OPENAI_API_KEY"))
	assert.Equal(t, "5433", os.Getenv("DB_PORT"), "numeric values are stringified")
}

func TestApplyVaultSecrets_ExistingEnvWinsWithoutOverwrite(t *testing.T) {
	server := vaultServer(t, `{"data":{"data":{"DB_PASSWORD":"from-vault"}}}`)

	t.Setenv("DB_PASSWORD", "from-env")

	result, err := ApplyVaultSecrets(context.Background(), VaultConfig{
		Enabled:   true,
		Addr:      server.URL,
		Token:     "test-token",
		Mount:     "secret",
		Path:      "medvend/api",
		KVVersion: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "from-env", os.Getenv("DB_PASSWORD"))
}

func TestApplyVaultSecrets_Disabled(t *testing.T) {
	result, err := ApplyVaultSecrets(context.Background(), VaultConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, result.Enabled)
}

func TestApplyVaultSecrets_IncompleteConfig(t *testing.T) {
	_, err := ApplyVaultSecrets(context.Background(), VaultConfig{Enabled: true})
	require.Error(t, err)
}

func TestKVEntryURL(t *testing.T) {
	v2, err := kvEntryURL(VaultConfig{Addr: "http://vault:8200/", Mount: "/secret/", Path: "medvend/api", KVVersion: 2})
	require.NoError(t, err)
	assert.Equal(t, "http://vault:8200/v1/secret/data/medvend/api", v2)

	v1, err := kvEntryURL(VaultConfig{Addr: "http://vault:8200", Mount: "secret", Path: "medvend/api", KVVersion: 1})
	require.NoError(t, err)
	assert.Equal(t, "http://vault:8200/v1/secret/medvend/api", v1)
}
