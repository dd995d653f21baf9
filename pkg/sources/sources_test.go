package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-listview/components/listview"
)

const payoutsYAML = `
records:
  - id: pay-1
    fields:
      artisan: Mary Akinyi
      amount: 3200
  - id: pay-2
    fields:
      artisan: Otieno Crafts
      amount: 1800
    tags: [mpesa]
`

func TestFixtureSourceYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "payouts.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(payoutsYAML), 0o600))
	jsonPath := filepath.Join(dir, "payouts.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"id":"pay-9","fields":{"artisan":"Kazuri"}}]`), 0o600))

	records, err := FixtureSource{Path: yamlPath}.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Mary Akinyi", records[0].String("artisan"))
	assert.Equal(t, []string{"mpesa"}, records[1].Tags)

	records, err = FixtureSource{Path: jsonPath}.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "pay-9", records[0].ID)

	_, err = FixtureSource{Path: filepath.Join(dir, "missing.yaml")}.Records(context.Background())
	require.Error(t, err)
}

func TestDecodeRecordsBareYAMLList(t *testing.T) {
	records, err := DecodeRecords(".yml", []byte("- id: a\n  fields: {name: A}\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)

	records, err = DecodeRecords(".json", []byte("  "))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHTTPSourceSendsTokenAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "ke", r.Header.Get("X-Region"))
		_, _ = w.Write([]byte(`{"records":[{"id":"usr-1","fields":{"name":"Amina"}}]}`))
	}))
	t.Cleanup(server.Close)

	src, err := NewHTTPSource(HTTPConfig{URL: server.URL, Token: "secret", Headers: map[string]string{"X-Region": "ke"}})
	require.NoError(t, err)
	records, err := src.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Amina", records[0].String("name"))
}

func TestHTTPSourceOpensCircuit(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	src, err := NewHTTPSource(HTTPConfig{URL: server.URL, Breaker: &gobreaker.Settings{
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 2 },
	}})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := src.Records(context.Background())
		require.ErrorIs(t, err, ErrRemote)
	}
	assert.Equal(t, gobreaker.StateOpen, src.State())

	_, err = src.Records(context.Background())
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, calls)
}

func TestNewHTTPSourceRequiresURL(t *testing.T) {
	_, err := NewHTTPSource(HTTPConfig{})
	require.Error(t, err)
}

func TestMemorySource(t *testing.T) {
	src := NewMemorySource(listview.DefaultInventory())
	records, err := src.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 5)

	records[0].Fields["name"] = "changed"
	again, _ := src.Records(context.Background())
	assert.NotEqual(t, "changed", again[0].String("name"))

	boom := errors.New("offline")
	src.Fail(boom)
	_, err = src.Records(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestFactoryWithManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payouts.yaml"), []byte(payoutsYAML), 0o600))
	manifest := `
lists:
  - definition:
      code: admin.list.payouts
      name: Payouts
      schema:
        fields:
          - name: artisan
          - name: amount
            kind: number
    source:
      kind: fixture
      path: payouts.yaml
`
	path := filepath.Join(dir, "lists.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))

	reg := listview.NewRegistry()
	reg.SetSourceFactory(NewFactory(FactoryOptions{BaseDir: dir}))
	_, err := reg.LoadManifestFile(path)
	require.NoError(t, err)

	src, ok := reg.Source("admin.list.payouts")
	require.True(t, ok)
	records, err := src.Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestFactoryRejectsUnknownKind(t *testing.T) {
	factory := NewFactory(FactoryOptions{})
	_, err := factory(listview.ManifestSource{Kind: "ftp"})
	require.Error(t, err)
	_, err = factory(listview.ManifestSource{Kind: "fixture"})
	require.Error(t, err)
	src, err := factory(listview.ManifestSource{Kind: "http", URL: "http://localhost:9"})
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)
}
