// Package projector turns the raw meal and product lists into the meal list
// screen: filtered, sorted, grouped by day and paginated.
package projector

import (
	"time"

	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/nutrition"
)

// ViewModel is one rendered page of the meal list.
type ViewModel struct {
	Groups      []DayGroup `json:"groups"`
	Page        int        `json:"page"`
	PageSize    int        `json:"pageSize"`
	TotalPages  int        `json:"totalPages"`
	TotalGroups int        `json:"totalGroups"`
	TotalMeals  int        `json:"totalMeals"`
}

// row is a meal with its totals recomputed and its date parsed.
type row struct {
	meal  model.Meal
	at    time.Time
	day   time.Time
	dated bool
}

// Project derives the page described by v from meals and products. Only meals
// owned by userID are considered, and every total is recomputed from the
// catalog. A nil label uses English.
func Project(meals []model.Meal, products []model.Product, userID string, v View, now time.Time, label Labeler) ViewModel {
	v = v.normalized()
	if label == nil {
		label = English
	}

	catalog := nutrition.NewCatalog(products)
	rows := make([]row, 0, len(meals))
	for _, m := range meals {
		if m.UserID != userID {
			continue
		}
		r := row{meal: catalog.Recompute(m)}
		if at, err := nutrition.ParseDate(m.Date); err == nil {
			r.at, r.day, r.dated = at, nutrition.Day(at), true
		}
		rows = append(rows, r)
	}

	rows = filterRows(rows, v.Filters)
	sortRows(rows, v.Sort)
	groups := groupByDay(rows, v.Sort)

	today := now.In(time.Local)
	for i := range groups {
		groups[i].Label = label(groups[i].Date, today)
	}

	totalPages := max(1, (len(groups)+v.PageSize-1)/v.PageSize)
	page := min(v.Page, totalPages)
	start := min((page-1)*v.PageSize, len(groups))
	end := min(start+v.PageSize, len(groups))

	return ViewModel{
		Groups:      groups[start:end],
		Page:        page,
		PageSize:    v.PageSize,
		TotalPages:  totalPages,
		TotalGroups: len(groups),
		TotalMeals:  len(rows),
	}
}
