package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/impactlens/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// resetViper registers defaults and env handling on a clean global viper
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.NoError(t, setDefaults(viper.GetViper(), model.DefaultConfig()))
	viper.SetEnvPrefix("IMPACTLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func TestSetDefaults_FlattensNestedKeys(t *testing.T) {
	v := viper.New()
	defaults := model.DefaultConfig()
	require.NoError(t, setDefaults(v, defaults))

	assert.Equal(t, defaults.Fetch.PerDomainLimit, v.GetInt("fetch.per_domain_limit"))
	assert.Equal(t, defaults.Fetch.Timeout, v.GetDuration("fetch.timeout"))
	assert.Equal(t, defaults.HTTP.UserAgent, v.GetString("http.user_agent"))
	assert.Equal(t, defaults.Discovery.ConventionalPaths, v.GetStringSlice("discovery.conventional_paths"))
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	resetViper(t)
	t.Setenv("IMPACTLENS_FETCH_MAX_CONCURRENCY", "7")
	t.Setenv("IMPACTLENS_FETCH_TIMEOUT", "5s")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Fetch.MaxConcurrency)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, model.DefaultConfig().Fetch.PerDomainLimit, cfg.Fetch.PerDomainLimit)
}

func TestLoadConfig_FileReplacesLists(t *testing.T) {
	resetViper(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("discovery:\n  conventional_paths: [/impact]\n"), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"/impact"}, cfg.Discovery.ConventionalPaths)
}

func TestLoadConfig_Invalid(t *testing.T) {
	resetViper(t)
	t.Setenv("IMPACTLENS_FETCH_PER_DOMAIN_LIMIT", "0")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch.per_domain_limit")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".impactlens", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# ImpactLens Configuration File"))

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, model.DefaultConfig().Fetch, cfg.Fetch)
	assert.Equal(t, model.DefaultConfig().Server, cfg.Server)

	err = writeDefaultConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestTaxonomyValidate_BuiltIn(t *testing.T) {
	var out bytes.Buffer
	taxonomyValidateCmd.SetOut(&out)
	t.Cleanup(func() { taxonomyValidateCmd.SetOut(nil) })

	require.NoError(t, taxonomyValidateCmd.RunE(taxonomyValidateCmd, nil))
	assert.Equal(t, "✓ built-in taxonomy is valid (4 categories, 16 factors)\n", out.String())
}

func TestTaxonomyValidate_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: []\n"), 0o644))

	err := taxonomyValidateCmd.RunE(taxonomyValidateCmd, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing category")
}

func TestTaxonomyShow(t *testing.T) {
	var out bytes.Buffer
	taxonomyShowCmd.SetOut(&out)
	t.Cleanup(func() { taxonomyShowCmd.SetOut(nil) })

	require.NoError(t, taxonomyShowCmd.RunE(taxonomyShowCmd, nil))
	assert.Contains(t, out.String(), "(keystone) 10%")
	assert.Contains(t, out.String(), "[override: locale]")
}

func TestBatchOutputFormat(t *testing.T) {
	t.Cleanup(func() { batchFormat, batchOut = "", "" })

	batchFormat, batchOut = "", "scores.csv"
	f, err := batchOutputFormat("text")
	require.NoError(t, err)
	assert.Equal(t, "csv", string(f))

	batchFormat = "json"
	f, err = batchOutputFormat("text")
	require.NoError(t, err)
	assert.Equal(t, "json", string(f))

	batchFormat, batchOut = "", ""
	f, err = batchOutputFormat("text")
	require.NoError(t, err)
	assert.Equal(t, "text", string(f))
}
