package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the caltrack command tree around app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "caltrack",
		Short:         "caltrack tracks meals and calories against a daily limit",
		Long:          "caltrack is the command line client of the caltrack store: log meals, browse them by day, and keep an eye on your daily calorie limit.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.Session.Init(cmd.Context())
		},
	}

	root.AddCommand(
		newRegisterCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newProfileCmd(app),
		newLimitCmd(app),
		newTodayCmd(app),
		newMealsCmd(app),
		newProductsCmd(app),
		newCalcCmd(app),
		newAdminCmd(app),
	)
	return root
}
