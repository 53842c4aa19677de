package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadInventoryConfigHolderDefaultsWhenFileMissing(t *testing.T) {
	holder, err := LoadInventoryConfigHolder(nil, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultInventoryConfig(), holder.Get())
}

func TestLoadInventoryConfigHolderReadsFile(t *testing.T) {
	dir := t.TempDir()
	body := []byte("inventory:\n  lowStock:\n    mode: fixed\n    floor: 7.5\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inventory.yml"), body, 0o600))

	holder, err := LoadInventoryConfigHolder(nil, dir)
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, LowStockModeFixed, cfg.LowStock.Mode)
	assert.Equal(t, 7.5, cfg.LowStock.Floor)
}

func TestLoadInventoryConfigHolderRejectsInvalidMode(t *testing.T) {
	dir := t.TempDir()
	body := []byte("inventory:\n  lowStock:\n    mode: sometimes\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inventory.yml"), body, 0o600))

	_, err := LoadInventoryConfigHolder(nil, dir)
	assert.Error(t, err)
}

func TestInventoryConfigHolderNotifiesListeners(t *testing.T) {
	holder := NewStaticInventoryConfigHolder(DefaultInventoryConfig())

	var seen []InventoryConfig
	holder.OnChange(func(cfg InventoryConfig) {
		seen = append(seen, cfg)
	})

	updated := InventoryConfig{LowStock: LowStockConfig{Mode: " FIXED ", Floor: 3}}
	holder.Set(updated)

	require.Len(t, seen, 1)
	assert.Equal(t, LowStockModeFixed, seen[0].LowStock.Mode)
	assert.Equal(t, LowStockBaseOriginal, seen[0].LowStock.Base)
	assert.Equal(t, seen[0], holder.Get())
}
