package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/goliatone/go-listview/components/listview"
	"github.com/goliatone/go-listview/pkg/config"
	"github.com/goliatone/go-listview/pkg/sources"
	"github.com/goliatone/go-listview/pkg/telemetry"
)

type cli struct {
	Config   string      `type:"path" short:"c" env:"LISTVIEW_CONFIG" help:"Path to the listview config file."`
	Manifest string      `type:"path" short:"m" help:"List manifest (overrides lists.manifest from config)."`
	Verbose  bool        `short:"v" help:"Log telemetry events to stderr."`
	Scaffold scaffoldCmd `cmd:"" help:"Add a list definition to a manifest."`
	Lists    listsCmd    `cmd:"" help:"Print registered lists."`
	Stats    statsCmd    `cmd:"" help:"Print the stat cards of a list."`
	Export   exportCmd   `cmd:"" help:"Export a (filtered, sorted) list to a report file."`
	Check    checkCmd    `cmd:"" help:"Fetch every list source and validate its records."`
}

// env is the runtime shared by the read-only commands.
type env struct {
	cfg      config.Config
	registry *listview.Registry
	service  *listview.Service
	out      io.Writer
}

func (c *cli) env(exporter listview.Exporter) (*env, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	manifest := cfg.Lists.Manifest
	if c.Manifest != "" {
		manifest = c.Manifest
	}
	registry, err := listview.LoadRegistry(manifest, sources.NewFactory(sources.FactoryOptions{
		BaseDir: filepath.Dir(manifest),
		Token:   cfg.Lists.SourceToken,
	}))
	if err != nil {
		return nil, err
	}
	var sink listview.Telemetry
	if c.Verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		sink = telemetry.Zap{Logger: logger}
	}
	service := listview.NewService(listview.Options{
		Registry:  registry,
		Exporter:  exporter,
		Telemetry: sink,
		Currency:  cfg.Lists.Currency,
	})
	return &env{cfg: cfg, registry: registry, service: service, out: os.Stdout}, nil
}

var cliViewer = listview.ViewerContext{UserID: "listctl", Roles: []string{"admin"}}

type listsCmd struct {
	Locale string `help:"Locale used for list names."`
}

func (cmd *listsCmd) Run(ctx context.Context, root *cli) error {
	e, err := root.env(nil)
	if err != nil {
		return err
	}
	for _, def := range e.service.Definitions() {
		source := "none"
		if _, ok := e.registry.Source(def.Code); ok {
			source = "static"
		}
		if path, ok := e.registry.ManifestSource(def.Code); ok {
			source = path
		}
		fmt.Fprintf(e.out, "%-24s %-24s %d fields, %d operations (%s)\n",
			def.Code, def.NameForLocale(cmd.Locale), len(def.Schema.Fields), len(def.Operations), source)
	}
	return nil
}

type statsCmd struct {
	List   string            `arg:"" help:"List code."`
	Filter map[string]string `help:"Filters as field=value." mapsep:","`
	Locale string            `help:"Locale used for card labels."`
}

func (cmd *statsCmd) Run(ctx context.Context, root *cli) error {
	e, err := root.env(nil)
	if err != nil {
		return err
	}
	viewer := cliViewer
	viewer.Locale = cmd.Locale
	if err := applyFilters(ctx, e.service, viewer, cmd.List, cmd.Filter); err != nil {
		return err
	}
	stats, cards, err := e.service.Stats(ctx, viewer, cmd.List)
	if err != nil {
		return err
	}
	for _, card := range cards {
		fmt.Fprintf(e.out, "%-20s %s\n", card.Label, card.Display)
	}
	statuses := make([]string, 0, len(stats.ByStatus))
	for status := range stats.ByStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(e.out, "  %-18s %s\n", status, humanize.Comma(int64(stats.ByStatus[status])))
	}
	return nil
}

type exportCmd struct {
	List   string            `arg:"" help:"List code."`
	Format string            `help:"Report format (csv, json, yaml). Defaults to the list's report format."`
	Filter map[string]string `help:"Filters as field=value." mapsep:","`
	Sort   string            `help:"Sort key code."`
	Out    string            `type:"path" help:"Output directory (defaults to lists.export_dir or the working directory)."`
}

func (cmd *exportCmd) Run(ctx context.Context, root *cli) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	dir := cmd.Out
	if dir == "" {
		dir = cfg.Lists.ExportDir
	}
	if dir == "" {
		dir = "."
	}
	e, err := root.env(listview.FileExporter{Dir: dir})
	if err != nil {
		return err
	}
	if err := applyFilters(ctx, e.service, cliViewer, cmd.List, cmd.Filter); err != nil {
		return err
	}
	if cmd.Sort != "" {
		if _, err := e.service.SetSort(ctx, cliViewer, cmd.List, cmd.Sort); err != nil {
			return err
		}
	}
	format := cmd.Format
	if format == "" {
		format = e.cfg.Lists.ExportFmt
	}
	report, err := e.service.ExportVisible(ctx, cliViewer, cmd.List, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "✓ Wrote %d records to %s\n", len(report.Records), filepath.Join(dir, report.Filename()))
	return nil
}

type checkCmd struct{}

func (cmd *checkCmd) Run(ctx context.Context, root *cli) error {
	e, err := root.env(nil)
	if err != nil {
		return err
	}
	if err := listview.CheckSources(ctx, e.registry, listview.NewJSONSchemaValidator()); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "✓ %d lists OK\n", len(e.registry.Definitions()))
	return nil
}

func applyFilters(ctx context.Context, service *listview.Service, viewer listview.ViewerContext, code string, filters map[string]string) error {
	fields := make([]string, 0, len(filters))
	for field := range filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	if _, err := service.Mount(ctx, viewer, code); err != nil {
		return err
	}
	for _, field := range fields {
		if _, err := service.SetFilter(ctx, viewer, code, field, strings.TrimSpace(filters[field])); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	root := &cli{}
	ctx := kong.Parse(root,
		kong.Name("listctl"),
		kong.Description("Inspect, export and scaffold go-listview lists."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
		kong.Bind(root),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
