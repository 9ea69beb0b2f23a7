package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	chdir(t, t.TempDir())

	path := writeFile(t, "tdoc.hcl", `
address            = "https://tdoc.example.com"
username           = "user"
company            = "ACME"
timeout            = "30s"
tls_verify         = false
max_conns_per_host = 8
`)

	t.Run("File only", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://tdoc.example.com", cfg.Address)
		assert.Equal(t, "user", cfg.Username)
		assert.Equal(t, "ACME", cfg.Company)
		require.NotNil(t, cfg.TLSVerify)
		assert.False(t, *cfg.TLSVerify)

		tc, err := cfg.TDoc()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, tc.Timeout)
		assert.Equal(t, 8, tc.MaxConnsPerHost)
		assert.False(t, *tc.TLSVerify)
	})

	t.Run("Environment overrides", func(t *testing.T) {
		t.Setenv("TDOC_USERNAME", "other")
		t.Setenv("TDOC_PASSWORD", "secret")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "other", cfg.Username)
		assert.Equal(t, "secret", cfg.Password)
		assert.Equal(t, "ACME", cfg.Company)
	})

	t.Run("Dotenv", func(t *testing.T) {
		require.NoError(t, os.WriteFile(".env", []byte("TDOC_COMPANY=FromDotenv\n"), 0o600))
		t.Cleanup(func() {
			os.Remove(".env")
			os.Unsetenv("TDOC_COMPANY")
		})

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "FromDotenv", cfg.Company)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
		assert.ErrorContains(t, err, "configuration file not found")
	})

	t.Run("Invalid file", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.hcl", `address = `))
		assert.ErrorContains(t, err, "failed to parse configuration file")
	})
}

func TestValidate(t *testing.T) {
	cfg := &Config{Timeout: "soon", LogLevel: "loud"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address is required")
	assert.Contains(t, err.Error(), "username is required")
	assert.Contains(t, err.Error(), "invalid timeout")
	assert.Contains(t, err.Error(), "invalid log_level")

	_, err = cfg.TDoc()
	assert.Error(t, err)
}

func TestLoad_EnvironmentOnly(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TDOC_ADDRESS", "https://tdoc.example.com")
	t.Setenv("TDOC_USERNAME", "user")
	t.Setenv("TDOC_VERIFY_IP", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.VerifyIP)

	tc, err := cfg.TDoc()
	require.NoError(t, err)
	assert.Equal(t, "https://tdoc.example.com", tc.Address)
	assert.True(t, tc.VerifyIP)
	assert.True(t, *tc.TLSVerify)
}

// chdir changes the working directory to dir for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
