package cli

import (
	"fmt"

	"github.com/caltrack/caltrack-go/internal/form"
	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/spf13/cobra"
)

func newProductsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the product catalog and add custom products",
	}
	cmd.AddCommand(newProductsListCmd(app), newProductsAddCmd(app))
	return cmd
}

func newProductsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List shared and custom products",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.user(); err != nil {
				return err
			}
			products, err := app.API.ListProducts(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range products {
				kind := "shared"
				if p.IsCustom() {
					kind = "custom"
				}
				fmt.Fprintf(out, "%-36s  %-30s %7.1f kcal/100g  %s\n", p.ID, p.Name, p.CaloriesPer100g, kind)
			}
			return nil
		},
	}
}

func newProductsAddCmd(app *App) *cobra.Command {
	var req model.ProductRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a custom product",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.activeUser()
			if err != nil {
				return err
			}
			if req.Shared && !u.IsAdmin() {
				return errAdminOnly
			}
			if err := form.ValidateProduct(req); err != nil {
				return err
			}
			p, err := app.API.CreateProduct(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: %s, %.1f kcal/100g\n", p.ID, p.Name, p.CaloriesPer100g)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Product name")
	cmd.Flags().Float64Var(&req.CaloriesPer100g, "kcal", 0, "Calories per 100 g")
	cmd.Flags().BoolVar(&req.Shared, "shared", false, "Add to the shared catalog (admins only)")
	return cmd
}
