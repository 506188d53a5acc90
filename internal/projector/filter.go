package projector

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/nutrition"
)

// CalorieBand buckets meals by total calories.
type CalorieBand string

const (
	BandLow    CalorieBand = "low"    // <= 500
	BandMedium CalorieBand = "medium" // 501..1000
	BandHigh   CalorieBand = "high"   // > 1000
)

// BandOf returns the band of a calorie total.
func BandOf(calories int) CalorieBand {
	switch {
	case calories <= 500:
		return BandLow
	case calories <= 1000:
		return BandMedium
	default:
		return BandHigh
	}
}

// MealType is matched against meal names with a keyword table.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

var mealTypeKeywords = map[MealType][]string{
	Breakfast: {"breakfast", "śniadanie", "sniadanie"},
	Lunch:     {"lunch", "obiad"},
	Dinner:    {"dinner", "supper", "kolacja"},
	Snack:     {"snack", "przekąska", "przekaska"},
}

// MatchesType reports whether name contains one of the keywords of t.
func MatchesType(name string, t MealType) bool {
	name = strings.ToLower(name)
	for _, kw := range mealTypeKeywords[t] {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

var (
	ErrUnknownBand    = errors.New("unknown calorie band")
	ErrUnknownType    = errors.New("unknown meal type")
	ErrInvalidRange   = errors.New("invalid range")
	ErrUnknownSortKey = errors.New("unknown sort key")
)

// Filters narrow the meal list. Zero-valued fields do not filter. From and To are
// calendar days (YYYY-MM-DD), both inclusive. MinGrams and MaxGrams bound the
// grams of at least one item; zero leaves that side open.
type Filters struct {
	Name       string      `json:"name,omitempty"`
	Band       CalorieBand `json:"band,omitempty"`
	From       string      `json:"from,omitempty"`
	To         string      `json:"to,omitempty"`
	Type       MealType    `json:"type,omitempty"`
	ProductIDs []string    `json:"productIds,omitempty"`
	MinGrams   float64     `json:"minGrams,omitempty"`
	MaxGrams   float64     `json:"maxGrams,omitempty"`
}

// Validate checks the enumerations and ranges.
func (f Filters) Validate() error {
	if f.Band != "" && f.Band != BandLow && f.Band != BandMedium && f.Band != BandHigh {
		return fmt.Errorf("%w: %q", ErrUnknownBand, f.Band)
	}
	if _, ok := mealTypeKeywords[f.Type]; f.Type != "" && !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}

	from, to, err := f.days()
	if err != nil {
		return err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidRange, f.From, f.To)
	}

	if f.MinGrams < 0 || f.MaxGrams < 0 || (f.MaxGrams > 0 && f.MaxGrams < f.MinGrams) {
		return fmt.Errorf("%w: grams %g..%g", ErrInvalidRange, f.MinGrams, f.MaxGrams)
	}
	return nil
}

func (f Filters) days() (from, to time.Time, err error) {
	if f.From != "" {
		if from, err = nutrition.ParseDate(f.From); err != nil {
			return from, to, fmt.Errorf("%w: from %q", ErrInvalidRange, f.From)
		}
		from = nutrition.Day(from)
	}
	if f.To != "" {
		if to, err = nutrition.ParseDate(f.To); err != nil {
			return from, to, fmt.Errorf("%w: to %q", ErrInvalidRange, f.To)
		}
		to = nutrition.Day(to)
	}
	return from, to, nil
}

// predicate is one filter criterion over a priced meal.
type predicate func(row) bool

func (f Filters) predicates() []predicate {
	var ps []predicate

	if name := strings.ToLower(strings.TrimSpace(f.Name)); name != "" {
		ps = append(ps, func(r row) bool {
			return strings.Contains(strings.ToLower(r.meal.Name), name)
		})
	}

	if f.Band != "" {
		ps = append(ps, func(r row) bool { return BandOf(r.meal.TotalCalories) == f.Band })
	}

	// Bad range bounds were rejected by Validate; here they are ignored.
	if from, to, err := f.days(); err == nil && (!from.IsZero() || !to.IsZero()) {
		ps = append(ps, func(r row) bool {
			if !r.dated {
				return false
			}
			if !from.IsZero() && r.day.Before(from) {
				return false
			}
			return to.IsZero() || !r.day.After(to)
		})
	}

	if f.Type != "" {
		ps = append(ps, func(r row) bool { return MatchesType(r.meal.Name, f.Type) })
	}

	if len(f.ProductIDs) > 0 {
		ps = append(ps, func(r row) bool {
			return slices.ContainsFunc(r.meal.Items, func(it model.MealItem) bool {
				return slices.Contains(f.ProductIDs, it.ProductID)
			})
		})
	}

	if f.MinGrams > 0 || f.MaxGrams > 0 {
		ps = append(ps, func(r row) bool {
			return slices.ContainsFunc(r.meal.Items, func(it model.MealItem) bool {
				return it.Grams >= f.MinGrams && (f.MaxGrams == 0 || it.Grams <= f.MaxGrams)
			})
		})
	}

	return ps
}

func filterRows(rows []row, f Filters) []row {
	ps := f.predicates()
	out := make([]row, 0, len(rows))
next:
	for _, r := range rows {
		for _, p := range ps {
			if !p(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}
