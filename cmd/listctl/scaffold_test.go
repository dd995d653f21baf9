package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-listview/components/listview"
)

func TestScaffoldCreatesManifestAndFixture(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "lists.yaml")
	var out bytes.Buffer
	cmd := &scaffoldCmd{
		Code:         "admin.list.orders",
		ManifestPath: manifest,
		Field:        []string{"customer", "status:enum:pending|shipped", "order_total:number"},
		Filterable:   []string{"status"},
		Sort:         []string{"order_total:desc"},
		Operation:    []string{"ship:set_field", "delete:delete"},
		StatusField:  "status",
		Fixture:      true,
		out:          &out,
	}
	err := cmd.Run(context.Background())
	require.Error(t, err, "set_field needs a target field")

	cmd.Operation = []string{"export:export", "delete:delete"}
	require.NoError(t, cmd.Run(context.Background()))
	assert.Contains(t, out.String(), "✓ Added admin.list.orders")

	doc, err := listview.ReadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, doc.Lists, 1)
	def := doc.Lists[0].Definition
	assert.Equal(t, "Orders", def.Name)
	require.Len(t, def.Schema.Fields, 3)
	assert.Equal(t, "orderTotal", def.Schema.Fields[2].Name)
	assert.Equal(t, "Order Total", def.Schema.Fields[2].Label)
	assert.True(t, def.Schema.Fields[1].Filterable)
	assert.Equal(t, []string{"pending", "shipped"}, def.Schema.Fields[1].Values)
	assert.Equal(t, "order_total_desc", def.SortKeys[0].Code)
	del, ok := def.Operation("delete")
	require.True(t, ok)
	assert.True(t, del.Destructive)
	assert.Equal(t, "orders.yaml", doc.Lists[0].Source.Path)

	_, err = os.Stat(filepath.Join(dir, "orders.yaml"))
	require.NoError(t, err)

	require.Error(t, cmd.Run(context.Background()), "duplicate without overwrite")
	cmd.Overwrite = true
	cmd.Name = "Customer Orders"
	require.NoError(t, cmd.Run(context.Background()))
	doc, err = listview.ReadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, doc.Lists, 1)
	assert.Equal(t, "Customer Orders", doc.Lists[0].Definition.Name)
}

func TestScaffoldRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	cases := []scaffoldCmd{
		{Code: "orders", ManifestPath: filepath.Join(dir, "a.yaml")},
		{Code: "admin.list.orders", ManifestPath: filepath.Join(dir, "b.yaml"), Field: []string{"status:enum"}},
		{Code: "admin.list.orders", ManifestPath: filepath.Join(dir, "c.yaml"), Field: []string{"status:colour"}},
		{Code: "admin.list.orders", ManifestPath: filepath.Join(dir, "d.yaml"), Operation: []string{"ship"}},
		{Code: "admin.list.orders", ManifestPath: filepath.Join(dir, "e.yaml"), Sort: []string{"total:sideways"}},
	}
	for _, cmd := range cases {
		cmd := cmd
		cmd.out = &bytes.Buffer{}
		require.Error(t, cmd.Run(context.Background()), "%+v", cmd)
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Order Total", titleCase("orderTotal"))
	assert.Equal(t, "Unread Count", titleCase("unread_count"))
	assert.Equal(t, "orders.yaml", fixtureName("admin.list.orders"))
}
