package listview

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "320px"

// RenderCache memoizes rendered chart HTML.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL cache for rendered charts.
type ChartCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cachedChart
}

type cachedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL. A non-positive TTL disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		entries: make(map[string]cachedChart),
	}
}

// GetOrRender returns a cached entry or renders and stores a new one.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

func (c *ChartCache) get(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) set(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cachedChart{html: html, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// StatsChart renders the status distribution of a list as a server-side
// ECharts bar or pie chart.
type StatsChart struct {
	kind       string
	cache      RenderCache
	theme      string
	assetsHost string
	translator TranslationService
}

// StatsChartOption customizes a StatsChart.
type StatsChartOption func(*StatsChart)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) StatsChartOption {
	return func(s *StatsChart) {
		s.cache = cache
	}
}

// WithChartTheme sets the chart theme (defaults to Westeros).
func WithChartTheme(theme string) StatsChartOption {
	return func(s *StatsChart) {
		if theme != "" {
			s.theme = theme
		}
	}
}

// WithChartAssetsHost makes the ECharts JS load from the given host.
func WithChartAssetsHost(host string) StatsChartOption {
	return func(s *StatsChart) {
		s.assetsHost = host
	}
}

// WithChartTranslator localizes chart titles.
func WithChartTranslator(t TranslationService) StatsChartOption {
	return func(s *StatsChart) {
		s.translator = t
	}
}

// NewStatsChart builds a chart renderer; kind is "bar" or "pie".
func NewStatsChart(kind string, opts ...StatsChartOption) *StatsChart {
	s := &StatsChart{
		kind:  strings.ToLower(kind),
		theme: types.ThemeWesteros,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render produces chart HTML for the stats of a definition.
func (s *StatsChart) Render(ctx context.Context, def Definition, stats Stats, locale string) (string, error) {
	title := translateOrFallback(ctx, s.translator, "listview."+def.Code+".chart.title", locale, def.NameForLocale(locale), nil)
	labels, values := statusSeries(stats)
	if len(labels) == 0 {
		return "", fmt.Errorf("listview: %s has no status data to chart", def.Code)
	}
	render := func() (string, error) {
		switch s.kind {
		case "bar", "":
			bar := charts.NewBar()
			bar.SetGlobalOptions(s.globalOptions(title)...)
			bar.SetXAxis(labels)
			data := make([]opts.BarData, len(values))
			for i, v := range values {
				data[i] = opts.BarData{Name: labels[i], Value: v}
			}
			bar.AddSeries("status", data)
			return renderChart(bar)
		case "pie":
			pie := charts.NewPie()
			pie.SetGlobalOptions(s.globalOptions(title)...)
			data := make([]opts.PieData, len(values))
			for i, v := range values {
				data[i] = opts.PieData{Name: labels[i], Value: v}
			}
			pie.AddSeries("status", data)
			return renderChart(pie)
		default:
			return "", fmt.Errorf("listview: unsupported chart type %s", s.kind)
		}
	}
	if s.cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s:%s", def.Code, s.kind, locale, statsHash(stats))
	return s.cache.GetOrRender(key, render)
}

func (s *StatsChart) globalOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  s.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if s.assetsHost != "" {
		initOpts.AssetsHost = s.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func statusSeries(stats Stats) ([]string, []int) {
	labels := make([]string, 0, len(stats.ByStatus))
	for status := range stats.ByStatus {
		labels = append(labels, status)
	}
	sort.Strings(labels)
	values := make([]int, len(labels))
	for i, label := range labels {
		values[i] = stats.ByStatus[label]
	}
	return labels, values
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func statsHash(stats Stats) string {
	b, err := json.Marshal(stats)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
