package nutrition

import (
	"errors"
	"math"
)

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "veryActive"
)

type Goal string

const (
	Maintain Goal = "maintain"
	Loss     Goal = "loss"
	Gain     Goal = "gain"
)

var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:  1.2,
	Light:      1.375,
	Moderate:   1.55,
	Active:     1.725,
	VeryActive: 1.9,
}

var goalMultipliers = map[Goal]float64{
	Maintain: 1,
	Loss:     0.85,
	Gain:     1.15,
}

var (
	ErrIncompleteProfile = errors.New("age, weight and height are required")
	ErrUnknownGender     = errors.New("gender must be male or female")
	ErrUnknownActivity   = errors.New("unknown activity level")
	ErrUnknownGoal       = errors.New("unknown goal")
)

// Profile is the calculator input. Zero Activity and Goal default to moderate and maintain.
type Profile struct {
	Gender   Gender        `json:"gender"`
	Age      int           `json:"age"`
	WeightKg float64       `json:"weight"`
	HeightCm float64       `json:"height"`
	Activity ActivityLevel `json:"activityLevel"`
	Goal     Goal          `json:"goal"`
}

// Estimate is the calculator output, both values rounded to whole kcal.
type Estimate struct {
	BMR      int `json:"bmr"`
	Calories int `json:"result"`
}

// BMR returns the unrounded Mifflin-St Jeor basal metabolic rate.
func BMR(g Gender, weightKg, heightCm float64, age int) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if g == Female {
		return base - 161
	}
	return base + 5
}

// Calculate estimates the daily calorie need of p. The TDEE is derived from the
// unrounded BMR and rounded once at the end.
func Calculate(p Profile) (Estimate, error) {
	if p.Age <= 0 || p.WeightKg <= 0 || p.HeightCm <= 0 {
		return Estimate{}, ErrIncompleteProfile
	}
	if p.Gender != Male && p.Gender != Female {
		return Estimate{}, ErrUnknownGender
	}
	if p.Activity == "" {
		p.Activity = Moderate
	}
	if p.Goal == "" {
		p.Goal = Maintain
	}

	activity, ok := activityMultipliers[p.Activity]
	if !ok {
		return Estimate{}, ErrUnknownActivity
	}
	goal, ok := goalMultipliers[p.Goal]
	if !ok {
		return Estimate{}, ErrUnknownGoal
	}

	bmr := BMR(p.Gender, p.WeightKg, p.HeightCm, p.Age)
	return Estimate{
		BMR:      int(math.Round(bmr)),
		Calories: int(math.Round(bmr * activity * goal)),
	}, nil
}
