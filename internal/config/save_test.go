package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/conceptnav/internal/category"
)

func TestSaveDefaultSelection_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	err := SaveDefaultSelection(configPath, category.Selection{"MICRODATA_DOMAINS": "LFS"})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "catalogue:")
	assert.Contains(t, string(data), "default_selection:")
	assert.Contains(t, string(data), "MICRODATA_DOMAINS: LFS")
}

func TestSaveDefaultSelection_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# registry settings
registry:
  base_url: http://localhost:8080/sdmx
catalogue:
  category_scheme_id: MICRODATA_DOMAINS
  default_selection:
    OLD: X
fetch:
  concurrency: 3
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o600))

	sel := category.Selection{"MICRODATA_DOMAINS": "HBS", "MICRODATA_COLLECTION_YEAR": "2021", "MICRODATA_FILE_TYPE": ""}
	require.NoError(t, SaveDefaultSelection(configPath, sel))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# registry settings")
	assert.NotContains(t, string(data), "OLD")
	assert.NotContains(t, string(data), "MICRODATA_FILE_TYPE")

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	require.Equal(t, "http://localhost:8080/sdmx", cfg.Registry.BaseURL)
	require.Equal(t, "MICRODATA_DOMAINS", cfg.Catalogue.CategorySchemeID)
	require.Equal(t, 3, cfg.Fetch.Concurrency)
	// viper lowercases map keys
	require.Equal(t, map[string]string{
		"microdata_domains":         "HBS",
		"microdata_collection_year": "2021",
	}, cfg.Catalogue.DefaultSelection)
	require.Equal(t, category.Selection{
		"MICRODATA_DOMAINS":         "HBS",
		"MICRODATA_COLLECTION_YEAR": "2021",
	}, cfg.Selection())
}

func TestSaveDefaultSelection_AddsCatalogueSection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("fetch:\n  concurrency: 4\n"), 0o600))

	require.NoError(t, SaveDefaultSelection(configPath, category.Selection{"MICRODATA_DOMAINS": "LFS"}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "concurrency: 4")
	assert.Contains(t, string(data), "default_selection:")
}

func TestSaveDefaultSelection_RejectsNonMapping(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("- a\n- b\n"), 0o600))

	err := SaveDefaultSelection(configPath, category.Selection{"S": "C"})
	require.Error(t, err)
}
