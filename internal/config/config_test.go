package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comparador/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FETCH_CONCURRENCY", "0")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "./data/datasets.yaml", cfg.DatasetsFile)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 1, cfg.FetchConcurrency)
	assert.True(t, cfg.ZeroAsMissing)
	assert.False(t, cfg.LooseOfferText)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ZERO_AS_MISSING", "false")
	t.Setenv("LOOSE_OFFER_TEXT", "true")
	t.Setenv("FETCH_TIMEOUT", "250ms")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.ZeroAsMissing)
	assert.True(t, cfg.LooseOfferText)
	assert.Equal(t, 250*time.Millisecond, cfg.FetchTimeout)

	t.Setenv("FETCH_TIMEOUT", "soon")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestLoadDatasetsMissingManifest(t *testing.T) {
	sets, err := config.LoadDatasets(filepath.Join(t.TempDir(), "none.yaml"), "data")
	require.NoError(t, err)
	require.Len(t, sets, 3)
	assert.Equal(t, "aliexpress", sets[0].Tag)
	assert.Equal(t, filepath.Join("data", "productos_shopify.csv"), sets[2].Path)
}

func TestLoadDatasetsManifest(t *testing.T) {
	t.Setenv("FEED_HOST", "feeds.example.com")
	dir := t.TempDir()
	path := filepath.Join(dir, "datasets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
datasets:
  - name: local
    tag: aliexpress
    path: ali.json
  - name: remote
    tag: temu
    url: https://${FEED_HOST}/temu.json
  - name: warehouse
    tag: shopify
    table: shop_products
`), 0o600))

	sets, err := config.LoadDatasets(path, dir)
	require.NoError(t, err)
	require.Len(t, sets, 3)
	assert.Equal(t, filepath.Join(dir, "ali.json"), sets[0].Path)
	assert.Equal(t, "https://feeds.example.com/temu.json", sets[1].URL)
	assert.Equal(t, "shop_products", sets[2].Table)
}

func TestLoadDatasetsRejectsAmbiguousSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
datasets:
  - name: both
    tag: temu
    path: a.json
    url: https://x.example/a.json
`), 0o600))
	_, err := config.LoadDatasets(path, "")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("datasets:\n  - name: nothing\n    tag: temu\n"), 0o600))
	_, err = config.LoadDatasets(path, "")
	assert.Error(t, err)
}
