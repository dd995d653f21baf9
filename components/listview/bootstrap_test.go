package listview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistryWithoutManifest(t *testing.T) {
	reg, err := LoadRegistry("", nil)
	require.NoError(t, err)
	assert.Len(t, reg.Definitions(), 5)
}

func TestLoadRegistryWithManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ordersManifest), 0o600))

	reg, err := LoadRegistry(path, func(ManifestSource) (Source, error) {
		return StaticSource(nil), nil
	})
	require.NoError(t, err)
	assert.Len(t, reg.Definitions(), 7)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}

func TestCheckSourcesReportsFailures(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, CheckSources(context.Background(), reg, NewJSONSchemaValidator()))

	bad := DefaultInventory()
	bad[0] = bad[0].With("stock", -2)
	require.NoError(t, reg.RegisterSource(ListInventory, StaticSource(bad)))
	require.NoError(t, reg.RegisterSource(ListUsers, SourceFunc(func(context.Context) ([]Record, error) {
		return nil, errors.New("users api down")
	})))

	err := CheckSources(context.Background(), reg, NewJSONSchemaValidator())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "users api down")

	require.Error(t, CheckSources(context.Background(), nil, nil))
}
