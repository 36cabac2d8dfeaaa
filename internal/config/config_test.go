package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docserver.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

const minimalYAML = `
version: "1.0"
site:
  title: Test Docs
content:
  root: ./content
server:
  docs_port: 1313
  admin_port: 1315
store:
  path: ./docserver.db
`

func TestLoad_MinimalConfig_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	require.Equal(t, []string{"guides", "concepts", "references"}, cfg.Content.Categories)
	require.Equal(t, []string{".md", ".markdown"}, cfg.Content.Extensions)
	require.True(t, cfg.Content.Cache.IsEnabled())
	require.Equal(t, 1313, cfg.Server.DocsPort)
	require.Equal(t, "0 * * * *", cfg.Reindex.Schedule)
}

func TestLoad_MissingFile_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestLoad_UnsupportedVersion_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, strings.Replace(minimalYAML, `"1.0"`, `"9.9"`, 1)))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported configuration version")
}

func TestLoad_EnvExpansion_ResolvesSecret(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "sekrit")
	yaml := minimalYAML + `
auth:
  enabled: true
  users_file: ./users.yaml
  jwt_secret: ${TEST_JWT_SECRET}
`
	cfg, err := Load(writeConfig(t, yaml))
	require.NoError(t, err)
	require.Equal(t, "sekrit", cfg.Auth.JWTSecret)
}

func TestLoad_AuthEnabledWithoutSecret_Errors(t *testing.T) {
	yaml := minimalYAML + `
auth:
  enabled: true
  users_file: ./users.yaml
`
	_, err := Load(writeConfig(t, yaml))
	require.Error(t, err)
	require.Contains(t, err.Error(), "jwt_secret")
}

func TestNormalizeConfig_CategoriesAndExtensions_Canonicalized(t *testing.T) {
	cfg := &Config{
		Content: ContentConfig{
			Root:       "./content",
			Categories: []string{" Guides ", "concepts"},
			Extensions: []string{"MD", ".markdown"},
		},
	}

	res, err := NormalizeConfig(cfg)
	require.NoError(t, err)

	require.Equal(t, []string{"guides", "concepts"}, cfg.Content.Categories)
	require.Equal(t, []string{".md", ".markdown"}, cfg.Content.Extensions)
	require.NotEmpty(t, res.Warnings)
}

func TestValidateConfig_DuplicateCategory_Errors(t *testing.T) {
	yaml := strings.Replace(minimalYAML, "content:\n  root: ./content",
		"content:\n  root: ./content\n  categories: [guides, guides]", 1)
	_, err := Load(writeConfig(t, yaml))
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate content category")
}

func TestValidateConfig_SamePorts_Errors(t *testing.T) {
	yaml := strings.Replace(minimalYAML, "admin_port: 1315", "admin_port: 1313", 1)
	_, err := Load(writeConfig(t, yaml))
	require.Error(t, err)
	require.Contains(t, err.Error(), "must differ")
}

func TestValidateConfig_BadCronSchedule_Errors(t *testing.T) {
	yaml := minimalYAML + `
reindex:
  schedule: "every hour please"
`
	_, err := Load(writeConfig(t, yaml))
	require.Error(t, err)
	require.Contains(t, err.Error(), "schedule")
}

func TestInit_RoundTrip_LoadsCleanly(t *testing.T) {
	t.Setenv("DOCSERVER_JWT_SECRET", "example")
	t.Setenv("DOCSERVER_GIT_TOKEN", "example")
	path := filepath.Join(t.TempDir(), "docserver.yaml")

	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false), "existing file must not be overwritten")
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Team Documentation", cfg.Site.Title)
	require.True(t, cfg.Auth.Enabled)
}
