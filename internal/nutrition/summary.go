package nutrition

import (
	"time"

	"github.com/caltrack/caltrack-go/internal/model"
)

// Summary compares a day's intake with the user's limit.
type Summary struct {
	Date      string `json:"date"`
	Consumed  int    `json:"consumed"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Percent   int    `json:"percent"`
	Meals     int    `json:"meals"`
}

// DailySummary totals the meals of user dated on the calendar day of now.
// Remaining is never negative and Percent is capped at 100.
func DailySummary(meals []model.Meal, user model.User, now time.Time) Summary {
	day := now.In(time.Local).Format(DateLayout)
	s := Summary{Date: day, Limit: user.DailyCalorieLimit}

	for _, m := range meals {
		if m.UserID != user.ID {
			continue
		}
		d, err := ParseDate(m.Date)
		if err != nil || d.Format(DateLayout) != day {
			continue
		}
		s.Consumed += m.TotalCalories
		s.Meals++
	}

	s.Remaining = max(s.Limit-s.Consumed, 0)
	if s.Limit > 0 {
		s.Percent = min(s.Consumed*100/s.Limit, 100)
	}
	return s
}
