package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-listview/components/listview"
)

type scaffoldCmd struct {
	Code         string   `required:"" help:"Fully-qualified list code (e.g. admin.list.orders)."`
	Name         string   `help:"Display name (defaults to the title-cased last code segment)."`
	Description  string   `help:"One-line description used in manifests."`
	ManifestPath string   `required:"" name:"manifest-path" type:"path" help:"Manifest YAML file to create or update."`
	Field        []string `help:"Field as name[:kind[:value|value]] (repeatable)."`
	Filterable   []string `help:"Fields exposed as filters."`
	Sort         []string `help:"Sort key as field[:asc|desc] (repeatable)."`
	Operation    []string `help:"Bulk operation as code:effect (repeatable). delete is marked destructive."`
	StatusField  string   `help:"Field counted by the stats summary."`
	Fixture      bool     `help:"Write an empty fixture file next to the manifest and reference it as the list source."`
	Overwrite    bool     `help:"Replace an existing manifest entry."`

	out io.Writer
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("listctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}

	entry, err := cmd.entry()
	if err != nil {
		return err
	}
	if cmd.Fixture {
		entry.Source = listview.ManifestSource{Kind: "fixture", Path: fixtureName(cmd.Code)}
	}
	if err := entry.Definition.Validate(); err != nil {
		return fmt.Errorf("listctl: %w", err)
	}

	replaced := false
	for idx := range doc.Lists {
		if doc.Lists[idx].Definition.Code != cmd.Code {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("listctl: manifest already defines list %s (use --overwrite to replace)", cmd.Code)
		}
		doc.Lists[idx] = entry
		replaced = true
		break
	}
	if !replaced {
		doc.Lists = append(doc.Lists, entry)
	}
	sort.Slice(doc.Lists, func(i, j int) bool {
		return doc.Lists[i].Definition.Code < doc.Lists[j].Definition.Code
	})

	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	out := cmd.out
	if out == nil {
		out = os.Stdout
	}
	if cmd.Fixture {
		fixturePath := filepath.Join(filepath.Dir(manifestPath), entry.Source.Path)
		if err := writeFixture(fixturePath, cmd.Overwrite); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Added %s to %s with fixture %s\n", cmd.Code, manifestPath, fixturePath)
		return nil
	}
	fmt.Fprintf(out, "✓ Added %s to %s\n", cmd.Code, manifestPath)
	return nil
}

func (cmd *scaffoldCmd) validate() error {
	if !strings.Contains(cmd.Code, ".") {
		return fmt.Errorf("listctl: list code %s must contain at least one '.' segment", cmd.Code)
	}
	return nil
}

func (cmd *scaffoldCmd) entry() (listview.ManifestList, error) {
	name := cmd.Name
	if name == "" {
		name = titleCase(lastSegment(cmd.Code))
	}
	def := listview.Definition{
		Code:        cmd.Code,
		Name:        name,
		Description: cmd.Description,
		Stats:       listview.StatsConfig{StatusField: cmd.StatusField},
	}

	filterable := make(map[string]bool, len(cmd.Filterable))
	for _, f := range cmd.Filterable {
		filterable[strcase.ToCamel(f)] = true
	}
	for _, spec := range cmd.Field {
		field, err := parseField(spec)
		if err != nil {
			return listview.ManifestList{}, err
		}
		field.Filterable = filterable[field.Name]
		def.Schema.Fields = append(def.Schema.Fields, field)
	}
	for _, spec := range cmd.Sort {
		key, err := parseSort(spec)
		if err != nil {
			return listview.ManifestList{}, err
		}
		def.SortKeys = append(def.SortKeys, key)
	}
	for _, spec := range cmd.Operation {
		op, err := parseOperation(spec)
		if err != nil {
			return listview.ManifestList{}, err
		}
		def.Operations = append(def.Operations, op)
	}
	return listview.ManifestList{Definition: def}, nil
}

func parseField(spec string) (listview.FieldDef, error) {
	parts := strings.SplitN(spec, ":", 3)
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return listview.FieldDef{}, fmt.Errorf("listctl: field %q has no name", spec)
	}
	field := listview.FieldDef{
		Name:  strcase.ToCamel(name),
		Label: titleCase(name),
		Kind:  listview.KindText,
	}
	if len(parts) > 1 && parts[1] != "" {
		field.Kind = listview.FieldKind(strings.ToLower(parts[1]))
	}
	switch field.Kind {
	case listview.KindText, listview.KindNumber, listview.KindTime, listview.KindTags:
	case listview.KindEnum:
		if len(parts) < 3 || parts[2] == "" {
			return listview.FieldDef{}, fmt.Errorf("listctl: enum field %s needs values", name)
		}
		field.Values = strings.Split(parts[2], "|")
	default:
		return listview.FieldDef{}, fmt.Errorf("listctl: field %s has unknown kind %q", name, field.Kind)
	}
	return field, nil
}

func parseSort(spec string) (listview.SortKey, error) {
	field, dir, _ := strings.Cut(spec, ":")
	if field == "" {
		return listview.SortKey{}, fmt.Errorf("listctl: sort %q has no field", spec)
	}
	key := listview.SortKey{Field: strcase.ToCamel(field), Label: titleCase(field), Direction: listview.SortAsc}
	if dir != "" {
		key.Direction = listview.SortDirection(strings.ToLower(dir))
	}
	key.Code = strcase.ToSnake(field) + "_" + string(key.Direction)
	return key, nil
}

func parseOperation(spec string) (listview.BulkOperation, error) {
	code, effect, ok := strings.Cut(spec, ":")
	if !ok || code == "" || effect == "" {
		return listview.BulkOperation{}, fmt.Errorf("listctl: operation %q must be code:effect", spec)
	}
	op := listview.BulkOperation{
		Code:   strcase.ToSnake(code),
		Label:  titleCase(code),
		Effect: listview.Effect(strings.ToLower(effect)),
	}
	if op.Effect == listview.EffectDelete {
		op.Destructive = true
	}
	return op, nil
}

func lastSegment(code string) string {
	parts := strings.Split(code, ".")
	return strings.TrimSpace(parts[len(parts)-1])
}

func titleCase(s string) string {
	words := strings.Split(strcase.ToSnake(s), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func fixtureName(code string) string {
	return strcase.ToSnake(lastSegment(code)) + ".yaml"
}

func loadOrInitManifest(path string) (*listview.ManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &listview.ManifestDocument{
				Version: listview.ManifestVersion,
				Lists:   []listview.ManifestList{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("listctl: stat manifest: %w", err)
	}
	return listview.ReadManifest(path)
}

func writeManifest(path string, doc *listview.ManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("listctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("listctl: create manifest %s: %w", path, err)
	}
	defer file.Close()
	if err := listview.EncodeManifest(file, *doc); err != nil {
		return fmt.Errorf("listctl: write manifest: %w", err)
	}
	return nil
}

func writeFixture(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return nil
	}
	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{"records": []listview.Record{}}); err != nil {
		return fmt.Errorf("listctl: encode fixture: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("listctl: encode fixture: %w", err)
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("listctl: write fixture: %w", err)
	}
	return nil
}
