package projector

import (
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey orders the filtered meals and their day groups.
type SortKey string

const (
	SortNameAsc      SortKey = "name_asc"
	SortNameDesc     SortKey = "name_desc"
	SortDateAsc      SortKey = "date_asc"
	SortDateDesc     SortKey = "date_desc"
	SortCaloriesAsc  SortKey = "calories_asc"
	SortCaloriesDesc SortKey = "calories_desc"
)

// SortKeys lists the accepted keys.
var SortKeys = []SortKey{SortNameAsc, SortNameDesc, SortDateAsc, SortDateDesc, SortCaloriesAsc, SortCaloriesDesc}

func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(s)
	if !slices.Contains(SortKeys, k) {
		return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
	}
	return k, nil
}

func (k SortKey) desc() bool {
	return k == SortNameDesc || k == SortDateDesc || k == SortCaloriesDesc
}

func newCollator() *collate.Collator {
	return collate.New(language.Polish, collate.IgnoreCase)
}

func sortRows(rows []row, key SortKey) {
	var cmp func(a, b row) int
	switch key {
	case SortNameAsc, SortNameDesc:
		col := newCollator()
		cmp = func(a, b row) int { return col.CompareString(a.meal.Name, b.meal.Name) }
	case SortCaloriesAsc, SortCaloriesDesc:
		cmp = func(a, b row) int { return a.meal.TotalCalories - b.meal.TotalCalories }
	default:
		cmp = func(a, b row) int { return a.at.Compare(b.at) }
	}
	if key.desc() {
		asc := cmp
		cmp = func(a, b row) int { return asc(b, a) }
	}
	slices.SortStableFunc(rows, cmp)
}
