package cli

import (
	"fmt"

	"github.com/caltrack/caltrack-go/internal/admin"
	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/spf13/cobra"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage user accounts (admins only)",
	}
	cmd.AddCommand(newAdminUsersCmd(app), newAdminToggleCmd(app))
	return cmd
}

func (a *App) requireAdmin() (model.User, error) {
	u, err := a.user()
	if err != nil {
		return u, err
	}
	if !u.IsAdmin() {
		return u, errAdminOnly
	}
	return u, nil
}

func newAdminUsersCmd(app *App) *cobra.Command {
	var (
		search string
		field  string
		desc   bool
	)

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := app.requireAdmin()
			if err != nil {
				return err
			}
			f, err := admin.ParseField(field)
			if err != nil {
				return err
			}

			dir := admin.NewDirectory(app.API, me.ID)
			if err := dir.Load(cmd.Context()); err != nil {
				return err
			}
			users, counts := dir.List(search, admin.Sort{Field: f, Desc: desc})

			out := cmd.OutOrStdout()
			for _, u := range users {
				marker := " "
				if dir.IsCurrentUser(u.ID) {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-36s  %-24s %-30s %-5s %-9s %5d kcal\n",
					marker, u.ID, u.Name, u.Email, u.Role, status(u.IsActive), u.DailyCalorieLimit)
			}
			fmt.Fprintf(out, "Users: %d  active: %d  suspended: %d  admins: %d\n",
				counts.Total, counts.Active, counts.Suspended, counts.Admins)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Match name, email or role")
	cmd.Flags().StringVar(&field, "sort", string(admin.FieldName), "Sort by name, email, role, isActive or dailyCalorieLimit")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	return cmd
}

func newAdminToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <user-id>",
		Short: "Suspend an active account or reactivate a suspended one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := app.requireAdmin()
			if err != nil {
				return err
			}

			dir := admin.NewDirectory(app.API, me.ID)
			if err := dir.Load(cmd.Context()); err != nil {
				return err
			}
			u, err := dir.ToggleStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Name, status(u.IsActive))
			return nil
		},
	}
}
