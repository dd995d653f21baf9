package listview

import (
	"cmp"
	"slices"
	"strings"
)

// sortRecords orders records in place by key using a stable comparator so
// records equal under the key keep their relative order. Records missing the
// field always sort last regardless of direction.
func sortRecords(records []Record, key SortKey) {
	if key.Field == "" {
		return
	}
	desc := key.Direction == SortDesc
	slices.SortStableFunc(records, func(a, b Record) int {
		av, aok := a.Value(key.Field)
		bv, bok := b.Value(key.Field)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		c := compareValues(av, bv)
		if desc {
			return -c
		}
		return c
	})
}

// compareValues orders numbers before times before text so mixed fields
// still sort consistently.
func compareValues(a, b any) int {
	ra, rb := valueRank(a), valueRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case rankNumber:
		af, _ := toFloat(a)
		bf, _ := toFloat(b)
		return cmp.Compare(af, bf)
	case rankTime:
		at, _ := toTime(a)
		bt, _ := toTime(b)
		return at.Compare(bt)
	}
	return strings.Compare(strings.ToLower(stringify(a)), strings.ToLower(stringify(b)))
}

const (
	rankNumber = iota
	rankTime
	rankText
)

func valueRank(v any) int {
	if _, ok := toFloat(v); ok {
		return rankNumber
	}
	if _, ok := toTime(v); ok {
		return rankTime
	}
	return rankText
}
