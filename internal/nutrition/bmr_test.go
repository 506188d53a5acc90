package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBMRGenderOffset(t *testing.T) {
	inputs := []struct {
		weight, height float64
		age            int
	}{
		{80, 180, 30},
		{60, 165, 25},
		{95.5, 190.2, 61},
		{45, 150, 18},
	}

	for _, in := range inputs {
		male := BMR(Male, in.weight, in.height, in.age)
		female := BMR(Female, in.weight, in.height, in.age)
		assert.InDelta(t, 166, male-female, 1e-9)
		assert.InDelta(t, 10*in.weight+6.25*in.height-5*float64(in.age)+5, male, 1e-9)
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    Estimate
	}{
		{
			name:    "male moderate maintain",
			profile: Profile{Gender: Male, Age: 30, WeightKg: 80, HeightCm: 180, Activity: Moderate, Goal: Maintain},
			want:    Estimate{BMR: 1780, Calories: 2759},
		},
		{
			name:    "male moderate loss",
			profile: Profile{Gender: Male, Age: 30, WeightKg: 80, HeightCm: 180, Activity: Moderate, Goal: Loss},
			want:    Estimate{BMR: 1780, Calories: 2345},
		},
		{
			name:    "male moderate gain",
			profile: Profile{Gender: Male, Age: 30, WeightKg: 80, HeightCm: 180, Activity: Moderate, Goal: Gain},
			want:    Estimate{BMR: 1780, Calories: 3173},
		},
		{
			name:    "female sedentary uses unrounded bmr",
			profile: Profile{Gender: Female, Age: 25, WeightKg: 60, HeightCm: 165, Activity: Sedentary, Goal: Maintain},
			want:    Estimate{BMR: 1345, Calories: 1614},
		},
		{
			name:    "defaults to moderate maintain",
			profile: Profile{Gender: Male, Age: 30, WeightKg: 80, HeightCm: 180},
			want:    Estimate{BMR: 1780, Calories: 2759},
		},
		{
			name:    "very active",
			profile: Profile{Gender: Male, Age: 30, WeightKg: 80, HeightCm: 180, Activity: VeryActive},
			want:    Estimate{BMR: 1780, Calories: 3382},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(tt.profile)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateErrors(t *testing.T) {
	valid := Profile{Gender: Male, Age: 30, WeightKg: 80, HeightCm: 180}

	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantErr error
	}{
		{name: "missing age", mutate: func(p *Profile) { p.Age = 0 }, wantErr: ErrIncompleteProfile},
		{name: "missing weight", mutate: func(p *Profile) { p.WeightKg = 0 }, wantErr: ErrIncompleteProfile},
		{name: "missing height", mutate: func(p *Profile) { p.HeightCm = 0 }, wantErr: ErrIncompleteProfile},
		{name: "unknown gender", mutate: func(p *Profile) { p.Gender = "other" }, wantErr: ErrUnknownGender},
		{name: "unknown activity", mutate: func(p *Profile) { p.Activity = "extreme" }, wantErr: ErrUnknownActivity},
		{name: "unknown goal", mutate: func(p *Profile) { p.Goal = "bulk" }, wantErr: ErrUnknownGoal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			_, err := Calculate(p)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
