package listview

// StatsBucket groups several status values under one named counter.
type StatsBucket struct {
	Key      string      `json:"key" yaml:"key"`
	Label    string      `json:"label,omitempty" yaml:"label,omitempty"`
	Statuses []string    `json:"statuses" yaml:"statuses"`
	Variant  CardVariant `json:"variant,omitempty" yaml:"variant,omitempty"`
	Icon     CardIcon    `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// StatsConfig tells the controller which fields feed the aggregates.
type StatsConfig struct {
	StatusField   string        `json:"status_field,omitempty" yaml:"status_field,omitempty"`
	PriceField    string        `json:"price_field,omitempty" yaml:"price_field,omitempty"`
	QuantityField string        `json:"quantity_field,omitempty" yaml:"quantity_field,omitempty"`
	SumField      string        `json:"sum_field,omitempty" yaml:"sum_field,omitempty"`
	Buckets       []StatsBucket `json:"buckets,omitempty" yaml:"buckets,omitempty"`
}

// Stats is the derived aggregate summary of a collection.
type Stats struct {
	Total      int            `json:"total"`
	TotalValue float64        `json:"total_value"`
	Sum        float64        `json:"sum,omitempty"`
	Buckets    map[string]int `json:"buckets"`
	ByStatus   map[string]int `json:"by_status"`
}

// Bucket returns the count for a named bucket.
func (s Stats) Bucket(key string) int {
	return s.Buckets[key]
}

// ComputeStats aggregates records: total count, Σ price×quantity, an optional
// plain sum, per-status counts and configured buckets.
func ComputeStats(cfg StatsConfig, records []Record) Stats {
	stats := Stats{
		Total:    len(records),
		Buckets:  make(map[string]int, len(cfg.Buckets)),
		ByStatus: map[string]int{},
	}
	for _, b := range cfg.Buckets {
		stats.Buckets[b.Key] = 0
	}
	for _, rec := range records {
		if cfg.PriceField != "" {
			price, pok := rec.Number(cfg.PriceField)
			qty := 1.0
			if cfg.QuantityField != "" {
				var qok bool
				qty, qok = rec.Number(cfg.QuantityField)
				pok = pok && qok
			}
			if pok {
				stats.TotalValue += price * qty
			}
		}
		if cfg.SumField != "" {
			if n, ok := rec.Number(cfg.SumField); ok {
				stats.Sum += n
			}
		}
		if cfg.StatusField == "" {
			continue
		}
		status := rec.String(cfg.StatusField)
		if status == "" {
			continue
		}
		stats.ByStatus[status]++
		for _, b := range cfg.Buckets {
			for _, accepted := range b.Statuses {
				if accepted == status {
					stats.Buckets[b.Key]++
					break
				}
			}
		}
	}
	return stats
}
