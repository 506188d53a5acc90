package cli

import (
	"fmt"
	"strconv"

	"github.com/caltrack/caltrack-go/internal/form"
	"github.com/spf13/cobra"
)

func newRegisterCmd(app *App) *cobra.Command {
	var f form.RegisterForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if f.Password, err = app.readSecret("Password"); err != nil {
				return err
			}
			if f.ConfirmPassword, err = app.readSecret("Confirm password"); err != nil {
				return err
			}
			_, err = app.Session.Register(cmd.Context(), f)
			return reported(err)
		},
	}

	cmd.Flags().StringVar(&f.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&f.Email, "email", "", "Email address")
	cmd.Flags().BoolVar(&f.AcceptTerms, "accept-terms", false, "Accept the terms of service")
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := app.readSecret("Password")
			if err != nil {
				return err
			}
			_, err = app.Session.Login(cmd.Context(), email, password)
			return reported(err)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Session.Logout(cmd.Context())
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.user()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name: %s\n", u.Name)
			fmt.Fprintf(out, "Email: %s\n", u.Email)
			fmt.Fprintf(out, "Role: %s\n", u.Role)
			fmt.Fprintf(out, "Status: %s\n", status(u.IsActive))
			fmt.Fprintf(out, "Premium: %t\n", u.IsPremium)
			fmt.Fprintf(out, "Daily limit: %d kcal\n", u.DailyCalorieLimit)
			return nil
		},
	}
}

func newProfileCmd(app *App) *cobra.Command {
	var f form.ProfileForm

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change your name or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.user()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("name") {
				f.Name = u.Name
			}
			if !cmd.Flags().Changed("email") {
				f.Email = u.Email
			}
			_, err = app.Session.UpdateUserProfile(cmd.Context(), f)
			return reported(err)
		},
	}

	cmd.Flags().StringVar(&f.Name, "name", "", "First and last name")
	cmd.Flags().StringVar(&f.Email, "email", "", "Email address")
	return cmd
}

func newLimitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "limit [kcal]",
		Short: "Show or set your daily calorie limit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.user()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Daily limit: %d kcal\n", u.DailyCalorieLimit)
				return nil
			}

			limit, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid limit %q", args[0])
			}
			_, err = app.Session.UpdateDailyCalorieLimit(cmd.Context(), limit)
			return reported(err)
		},
	}
}

func status(active bool) string {
	if active {
		return "active"
	}
	return "suspended"
}
