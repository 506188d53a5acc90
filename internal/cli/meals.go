package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/caltrack/caltrack-go/internal/form"
	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/nutrition"
	"github.com/caltrack/caltrack-go/internal/projector"
	"github.com/caltrack/caltrack-go/internal/state"
	"github.com/spf13/cobra"
)

func newMealsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meals",
		Short: "Browse and record meals",
	}
	cmd.AddCommand(
		newMealsListCmd(app),
		newMealsShowCmd(app),
		newMealsAddCmd(app),
		newMealsEditCmd(app),
		newMealsDeleteCmd(app),
	)
	return cmd
}

// fetch loads the meals and products visible to the session.
func (a *App) fetch(ctx context.Context) ([]model.Meal, []model.Product, error) {
	meals, err := a.API.ListMeals(ctx)
	if err != nil {
		return nil, nil, err
	}
	products, err := a.API.ListProducts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return meals, products, nil
}

// loadView returns the remembered meal list view. A corrupt record is replaced
// by the default view.
func (a *App) loadView(ctx context.Context) projector.View {
	v := projector.NewView()
	if _, err := state.GetJSON(ctx, a.Store, state.MealViewKey, &v); err != nil {
		slog.Warn("discarding stored meal view", "error", err)
		return projector.NewView()
	}
	return v
}

func newMealsListCmd(app *App) *cobra.Command {
	var (
		f        projector.Filters
		band     string
		mealType string
		sortKey  string
		page     int
		pageSize int
		reset    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your meals grouped by day",
		Long: "List your meals grouped by day. Filters, sort order and page size are remembered " +
			"between runs; changing a filter or the page size returns to the first page.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := app.user()
			if err != nil {
				return err
			}

			v := app.loadView(ctx)
			if reset {
				v = projector.NewView()
			}

			flags := cmd.Flags()
			filterFlags := []string{"name", "band", "from", "to", "type", "product", "min-grams", "max-grams"}
			for _, name := range filterFlags {
				if flags.Changed(name) {
					f.Band = projector.CalorieBand(band)
					f.Type = projector.MealType(mealType)
					if err := v.SetFilters(f); err != nil {
						return err
					}
					break
				}
			}
			if flags.Changed("sort") {
				k, err := projector.ParseSortKey(sortKey)
				if err != nil {
					return err
				}
				if err := v.SetSort(k); err != nil {
					return err
				}
			}
			if flags.Changed("page-size") {
				if err := v.SetPageSize(pageSize); err != nil {
					return err
				}
			}

			meals, products, err := app.fetch(ctx)
			if err != nil {
				return err
			}

			label := projector.LabelerFor(app.Config.Lang)
			now := app.Now()
			vm := projector.Project(meals, products, u.ID, v, now, label)
			if flags.Changed("page") {
				if !v.GoTo(page, vm.TotalPages) {
					fmt.Fprintf(cmd.ErrOrStderr(), "page %d is out of range 1..%d\n", page, vm.TotalPages)
				}
				vm = projector.Project(meals, products, u.ID, v, now, label)
			}
			v.Page = vm.Page

			if err := state.SetJSON(ctx, app.Store, state.MealViewKey, v); err != nil {
				return err
			}
			printMealPage(cmd.OutOrStdout(), vm)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.Name, "name", "", "Name contains (case insensitive)")
	fl.StringVar(&band, "band", "", "Calorie band: low (<=500), medium (501-1000), high (>1000)")
	fl.StringVar(&f.From, "from", "", "First day YYYY-MM-DD")
	fl.StringVar(&f.To, "to", "", "Last day YYYY-MM-DD")
	fl.StringVar(&mealType, "type", "", "Meal type: breakfast, lunch, dinner, snack")
	fl.StringSliceVar(&f.ProductIDs, "product", nil, "Contains any of these product IDs")
	fl.Float64Var(&f.MinGrams, "min-grams", 0, "Some item weighs at least this many grams")
	fl.Float64Var(&f.MaxGrams, "max-grams", 0, "Some item weighs at most this many grams")
	fl.StringVar(&sortKey, "sort", "", "Sort: "+joinKeys(projector.SortKeys))
	fl.IntVar(&page, "page", 1, "Page to show")
	fl.IntVar(&pageSize, "page-size", projector.DefaultPageSize, "Days per page: 5, 10 or 20")
	fl.BoolVar(&reset, "reset", false, "Forget remembered filters and sort order")
	return cmd
}

func joinKeys(keys []projector.SortKey) string {
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = string(k)
	}
	return strings.Join(s, ", ")
}

func printMealPage(w io.Writer, vm projector.ViewModel) {
	if vm.TotalMeals == 0 {
		fmt.Fprintln(w, "No meals.")
		return
	}
	for _, g := range vm.Groups {
		fmt.Fprintf(w, "%s  %d kcal\n", g.Label, g.TotalCalories)
		for _, m := range g.Meals {
			fmt.Fprintf(w, "  %-36s  %-30s %6d kcal\n", m.ID, m.Name, m.TotalCalories)
		}
	}
	fmt.Fprintf(w, "Page %d of %d (%d meals in %d days)\n", vm.Page, vm.TotalPages, vm.TotalMeals, vm.TotalGroups)
}

func newMealsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a meal with its products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.user(); err != nil {
				return err
			}
			m, err := app.API.GetMeal(ctx, args[0])
			if err != nil {
				return err
			}
			products, err := app.API.ListProducts(ctx)
			if err != nil {
				return err
			}

			catalog := nutrition.NewCatalog(products)
			m = catalog.Recompute(m)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", m.Name, m.Date)
			for _, d := range catalog.Details(m) {
				fmt.Fprintf(out, "  %-30s %7.1f g  %6.1f kcal/100g  %7.1f kcal\n", d.ProductName, d.Grams, d.CaloriesPer100g, d.Calories)
			}
			fmt.Fprintf(out, "Total: %d kcal\n", m.TotalCalories)
			return nil
		},
	}
}

// mealFlags are the inputs shared by add and edit.
type mealFlags struct {
	name   string
	date   string
	items  []string
	custom []string
}

func (mf *mealFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&mf.name, "name", "", "Meal name")
	fl.StringVar(&mf.date, "date", "", "Date YYYY-MM-DD or YYYY-MM-DDTHH:MM (default now)")
	fl.StringArrayVar(&mf.items, "item", nil, "Catalog item as productId:grams (repeatable)")
	fl.StringArrayVar(&mf.custom, "custom", nil, "Unsaved product as name:kcalPer100g:grams (repeatable)")
}

// request builds and validates the meal body. Items default to keep when no
// item flags were given.
func (mf *mealFlags) request(now string, keep []model.MealItem) (model.MealRequest, error) {
	req := model.MealRequest{Name: mf.name, Date: mf.date}
	if req.Date == "" {
		req.Date = now
	}
	if len(mf.items) == 0 && len(mf.custom) == 0 {
		req.Items = keep
	}

	for _, s := range mf.items {
		id, grams, ok := strings.Cut(s, ":")
		g, err := strconv.ParseFloat(grams, 64)
		if !ok || err != nil {
			return req, fmt.Errorf("invalid --item %q (expected productId:grams)", s)
		}
		req.Items = append(req.Items, model.MealItem{ProductID: id, Grams: g})
	}

	for _, s := range mf.custom {
		parts := strings.Split(s, ":")
		if len(parts) != 3 {
			return req, fmt.Errorf("invalid --custom %q (expected name:kcalPer100g:grams)", s)
		}
		kcal, err1 := strconv.ParseFloat(parts[1], 64)
		grams, err2 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil {
			return req, fmt.Errorf("invalid --custom %q (expected name:kcalPer100g:grams)", s)
		}
		req.Items = append(req.Items, model.MealItem{
			ProductName:           parts[0],
			Grams:                 grams,
			IsCustomProduct:       true,
			CustomProductCalories: kcal,
		})
	}

	return req, form.ValidateMeal(req)
}

func (a *App) nowString() string {
	return a.Now().Local().Format("2006-01-02T15:04")
}

func (a *App) activeUser() (model.User, error) {
	u, err := a.user()
	if err != nil {
		return u, err
	}
	if !u.IsActive {
		return u, errInactiveUser
	}
	return u, nil
}

func newMealsAddCmd(app *App) *cobra.Command {
	var mf mealFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a meal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.activeUser(); err != nil {
				return err
			}
			req, err := mf.request(app.nowString(), nil)
			if err != nil {
				return err
			}
			m, err := app.API.CreateMeal(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: %s, %d kcal\n", m.ID, m.Name, m.TotalCalories)
			return nil
		},
	}
	mf.register(cmd)
	return cmd
}

func newMealsEditCmd(app *App) *cobra.Command {
	var mf mealFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a meal's name, date or items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := app.activeUser(); err != nil {
				return err
			}
			cur, err := app.API.GetMeal(ctx, args[0])
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("name") {
				mf.name = cur.Name
			}
			if !cmd.Flags().Changed("date") {
				mf.date = cur.Date
			}
			req, err := mf.request(app.nowString(), cur.Items)
			if err != nil {
				return err
			}

			m, err := app.API.UpdateMeal(ctx, args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s, %d kcal\n", m.ID, m.Name, m.TotalCalories)
			return nil
		},
	}
	mf.register(cmd)
	return cmd
}

func newMealsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.activeUser(); err != nil {
				return err
			}
			if err := app.API.DeleteMeal(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newTodayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's intake against your daily limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.user()
			if err != nil {
				return err
			}
			meals, products, err := app.fetch(cmd.Context())
			if err != nil {
				return err
			}

			catalog := nutrition.NewCatalog(products)
			for i := range meals {
				meals[i] = catalog.Recompute(meals[i])
			}
			s := nutrition.DailySummary(meals, u, app.Now())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", s.Date)
			fmt.Fprintf(out, "Meals: %d\n", s.Meals)
			fmt.Fprintf(out, "Consumed: %d kcal\n", s.Consumed)
			fmt.Fprintf(out, "Limit: %d kcal\n", s.Limit)
			fmt.Fprintf(out, "Remaining: %d kcal\n", s.Remaining)
			fmt.Fprintf(out, "Progress: %d%%\n", s.Percent)
			return nil
		},
	}
}
