package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hoomlabs/hoom/internal/promoter"
)

func newPromotersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promoters",
		Short: "List promoters",
		Long:  "List promoters by name with the number of listings assigned to each.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}
			promoters, err := c.ListPromoters()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), promoters)
			}
			return printPromoterTable(cmd.OutOrStdout(), promoters)
		},
	}
}

func newPromoterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promoter",
		Short: "Manage promoters",
	}
	cmd.AddCommand(newPromoterSaveCmd(), newPromoterRemoveCmd())
	return cmd
}

func newPromoterSaveCmd() *cobra.Command {
	var (
		id int64
		in promoter.Input
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create or update a promoter",
		Long:  "Create a promoter, or update the one given with --id. A name is required.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.Validate(); err != nil {
				return err
			}
			c, err := newAPIClient()
			if err != nil {
				return err
			}
			if err := c.SavePromoter(id, in); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "saved": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Promoter %q saved.\n", in.Name)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "promoter to update (omit to create)")
	cmd.Flags().StringVar(&in.Name, "name", "", "name (required)")
	cmd.Flags().StringVar(&in.Company, "company", "", "company")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone")
	cmd.Flags().StringVar(&in.Email, "email", "", "email")

	return cmd
}

func newPromoterRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a promoter",
		Long:  "Delete a promoter. The store refuses while listings are still assigned to it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("promoter", args[0])
			if err != nil {
				return err
			}
			c, err := newAPIClient()
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd, fmt.Sprintf("Delete promoter #%d?", id)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			if err := c.DeletePromoter(id); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "removed": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Promoter #%d removed.\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
