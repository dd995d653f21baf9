package listview

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// CardVariant enumerates the visual treatments a stat card supports.
type CardVariant string

const (
	CardNeutral CardVariant = "neutral"
	CardPrimary CardVariant = "primary"
	CardSuccess CardVariant = "success"
	CardWarning CardVariant = "warning"
	CardDanger  CardVariant = "danger"
	CardInfo    CardVariant = "info"
)

// CardIcon enumerates the icons a stat card may show.
type CardIcon string

const (
	IconNone    CardIcon = ""
	IconPackage CardIcon = "package"
	IconMoney   CardIcon = "currency"
	IconAlert   CardIcon = "alert-triangle"
	IconCheck   CardIcon = "check-circle"
	IconUsers   CardIcon = "users"
	IconMessage CardIcon = "message-circle"
	IconTicket  CardIcon = "ticket"
	IconClock   CardIcon = "clock"
)

var knownVariants = map[CardVariant]struct{}{
	CardNeutral: {}, CardPrimary: {}, CardSuccess: {}, CardWarning: {}, CardDanger: {}, CardInfo: {},
}

var knownIcons = map[CardIcon]struct{}{
	IconNone: {}, IconPackage: {}, IconMoney: {}, IconAlert: {}, IconCheck: {},
	IconUsers: {}, IconMessage: {}, IconTicket: {}, IconClock: {},
}

// Valid reports whether the variant is recognized.
func (v CardVariant) Valid() bool {
	_, ok := knownVariants[v]
	return ok
}

// Valid reports whether the icon is recognized.
func (i CardIcon) Valid() bool {
	_, ok := knownIcons[i]
	return ok
}

// StatCard is the typed configuration for one summary card.
type StatCard struct {
	Key     string      `json:"key"`
	Label   string      `json:"label"`
	Value   float64     `json:"value"`
	Display string      `json:"display"`
	Variant CardVariant `json:"variant"`
	Icon    CardIcon    `json:"icon,omitempty"`
}

// CardOptions customizes card labels.
type CardOptions struct {
	Locale     string
	Translator TranslationService
	Currency   string
}

// Cards builds the stat cards for a definition's aggregates: total count, total
// value when a price field is configured, then one card per bucket.
func Cards(ctx context.Context, def Definition, stats Stats, opts CardOptions) []StatCard {
	currency := opts.Currency
	if currency == "" {
		currency = "KES"
	}
	key := func(suffix string) string {
		return "listview." + def.Code + ".cards." + suffix
	}
	cards := []StatCard{{
		Key:     "total",
		Label:   translateOrFallback(ctx, opts.Translator, key("total"), opts.Locale, "Total", nil),
		Value:   float64(stats.Total),
		Display: humanize.Comma(int64(stats.Total)),
		Variant: CardPrimary,
		Icon:    IconPackage,
	}}
	if def.Stats.PriceField != "" {
		cards = append(cards, StatCard{
			Key:     "total_value",
			Label:   translateOrFallback(ctx, opts.Translator, key("total_value"), opts.Locale, "Total value", nil),
			Value:   stats.TotalValue,
			Display: fmt.Sprintf("%s %s", currency, humanize.CommafWithDigits(stats.TotalValue, 2)),
			Variant: CardSuccess,
			Icon:    IconMoney,
		})
	}
	for _, b := range def.Stats.Buckets {
		label := b.Label
		if label == "" {
			label = humanizeKey(b.Key)
		}
		variant := b.Variant
		if !variant.Valid() {
			variant = CardNeutral
		}
		icon := b.Icon
		if !icon.Valid() {
			icon = IconNone
		}
		count := stats.Buckets[b.Key]
		cards = append(cards, StatCard{
			Key:     b.Key,
			Label:   translateOrFallback(ctx, opts.Translator, key(b.Key), opts.Locale, label, nil),
			Value:   float64(count),
			Display: humanize.Comma(int64(count)),
			Variant: variant,
			Icon:    icon,
		})
	}
	return cards
}

func humanizeKey(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		if r == '_' || r == '-' {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	out := strings.ToLower(b.String())
	if out == "" {
		return out
	}
	return strings.ToUpper(out[:1]) + out[1:]
}
