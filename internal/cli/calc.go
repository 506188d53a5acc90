package cli

import (
	"fmt"

	"github.com/caltrack/caltrack-go/internal/nutrition"
	"github.com/caltrack/caltrack-go/internal/state"
	"github.com/spf13/cobra"
)

func newCalcCmd(app *App) *cobra.Command {
	var (
		p            nutrition.Profile
		gender       string
		activity     string
		goal         string
		apply        bool
		showHistory  bool
		clearHistory bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Estimate your daily calorie needs (premium)",
		Long: "Estimate basal metabolic rate with the Mifflin-St Jeor formula and scale it by " +
			"activity and goal. The last five calculations are kept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.user(); err != nil {
				return err
			}
			u, err := app.Session.Refresh(ctx)
			if err != nil {
				return err
			}
			if !u.IsPremium {
				return errPremiumOnly
			}

			var h nutrition.History
			if _, err := state.GetJSON(ctx, app.Store, state.CalculatorHistoryKey, &h); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if clearHistory {
				h.Reset()
				return state.SetJSON(ctx, app.Store, state.CalculatorHistoryKey, h)
			}
			if showHistory {
				fmt.Fprintf(out, "Calculations: %d\n", h.Count)
				for _, e := range h.Entries {
					fmt.Fprintf(out, "  %s  %s %d y %.1f kg %.0f cm  BMR %d  %d kcal\n",
						e.Date.Local().Format("2006-01-02 15:04"), e.Profile.Gender, e.Profile.Age,
						e.Profile.WeightKg, e.Profile.HeightCm, e.Estimate.BMR, e.Estimate.Calories)
				}
				return nil
			}

			p.Gender = nutrition.Gender(gender)
			p.Activity = nutrition.ActivityLevel(activity)
			p.Goal = nutrition.Goal(goal)
			est, err := nutrition.Calculate(p)
			if err != nil {
				return err
			}

			h.Record(app.Now(), p, est)
			if err := state.SetJSON(ctx, app.Store, state.CalculatorHistoryKey, h); err != nil {
				return err
			}

			fmt.Fprintf(out, "BMR: %d kcal\n", est.BMR)
			fmt.Fprintf(out, "Daily needs: %d kcal\n", est.Calories)

			if apply {
				_, err := app.Session.UpdateDailyCalorieLimit(ctx, est.Calories)
				return reported(err)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&gender, "gender", string(nutrition.Male), "male or female")
	fl.IntVar(&p.Age, "age", 0, "Age in years")
	fl.Float64Var(&p.WeightKg, "weight", 0, "Weight in kg")
	fl.Float64Var(&p.HeightCm, "height", 0, "Height in cm")
	fl.StringVar(&activity, "activity", string(nutrition.Moderate), "sedentary, light, moderate, active or veryActive")
	fl.StringVar(&goal, "goal", string(nutrition.Maintain), "maintain, loss or gain")
	fl.BoolVar(&apply, "apply", false, "Use the result as your daily limit")
	fl.BoolVar(&showHistory, "history", false, "Show recent calculations")
	fl.BoolVar(&clearHistory, "clear-history", false, "Forget recent calculations")
	return cmd
}
