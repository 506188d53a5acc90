package projector

import (
	"fmt"
	"slices"
	"time"

	"github.com/caltrack/caltrack-go/internal/model"
)

// DayGroup is the meals of one calendar day. Date is zero for meals whose date
// could not be parsed.
type DayGroup struct {
	Date          time.Time    `json:"date"`
	Label         string       `json:"label"`
	TotalCalories int          `json:"totalCalories"`
	Meals         []model.Meal `json:"meals"`
}

// groupByDay buckets sorted rows by day. Meals keep their order inside a group.
// Groups follow the sort key: by day for date keys, by total for calorie keys,
// and by first appearance (the first meal's name) for name keys.
func groupByDay(rows []row, key SortKey) []DayGroup {
	var groups []DayGroup
	index := make(map[time.Time]int)

	for _, r := range rows {
		i, ok := index[r.day]
		if !ok {
			i = len(groups)
			index[r.day] = i
			groups = append(groups, DayGroup{Date: r.day})
		}
		groups[i].Meals = append(groups[i].Meals, r.meal)
		groups[i].TotalCalories += r.meal.TotalCalories
	}

	var cmp func(a, b DayGroup) int
	switch key {
	case SortDateAsc, SortDateDesc:
		cmp = func(a, b DayGroup) int { return a.Date.Compare(b.Date) }
	case SortCaloriesAsc, SortCaloriesDesc:
		cmp = func(a, b DayGroup) int { return a.TotalCalories - b.TotalCalories }
	default:
		return groups
	}
	if key.desc() {
		asc := cmp
		cmp = func(a, b DayGroup) int { return asc(b, a) }
	}
	slices.SortStableFunc(groups, cmp)
	return groups
}

// Labeler names a day relative to today.
type Labeler func(day, today time.Time) string

var englishMonths = [...]string{"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December"}

// English labels days "Today", "Yesterday" or "Monday, January 1, 2024".
func English(day, today time.Time) string {
	switch rel := relative(day, today); rel {
	case 0:
		return "Today"
	case 1:
		return "Yesterday"
	}
	if day.IsZero() {
		return "Unknown date"
	}
	return fmt.Sprintf("%s, %s %d, %d", day.Weekday(), englishMonths[day.Month()-1], day.Day(), day.Year())
}

var (
	polishWeekdays = [...]string{"niedziela", "poniedziałek", "wtorek", "środa", "czwartek", "piątek", "sobota"}
	polishMonths   = [...]string{"stycznia", "lutego", "marca", "kwietnia", "maja", "czerwca",
		"lipca", "sierpnia", "września", "października", "listopada", "grudnia"}
)

// Polish labels days "Dzisiaj", "Wczoraj" or "poniedziałek, 1 stycznia 2024".
func Polish(day, today time.Time) string {
	switch rel := relative(day, today); rel {
	case 0:
		return "Dzisiaj"
	case 1:
		return "Wczoraj"
	}
	if day.IsZero() {
		return "Nieznana data"
	}
	return fmt.Sprintf("%s, %d %s %d", polishWeekdays[day.Weekday()], day.Day(), polishMonths[day.Month()-1], day.Year())
}

// LabelerFor returns the labeler for a language code, English by default.
func LabelerFor(lang string) Labeler {
	if lang == "pl" {
		return Polish
	}
	return English
}

// relative returns 0 when day is today, 1 when it is yesterday, -1 otherwise.
func relative(day, today time.Time) int {
	if day.IsZero() {
		return -1
	}
	dy, dm, dd := day.Date()
	ty, tm, td := today.Date()
	if dy == ty && dm == tm && dd == td {
		return 0
	}
	yy, ym, yd := today.AddDate(0, 0, -1).Date()
	if dy == yy && dm == ym && dd == yd {
		return 1
	}
	return -1
}
