package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/luminacrm/lumina/internal/filter"
)

func newViewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "views",
		Short: "Manage saved filter views",
	}

	cmd.AddCommand(newViewsSaveCmd())
	cmd.AddCommand(newViewsListCmd())
	cmd.AddCommand(newViewsDeleteCmd())

	return cmd
}

func newViewsSaveCmd() *cobra.Command {
	var ruleSpecs []string

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a set of filter rules as a named view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ruleSpecs) == 0 {
				return fmt.Errorf("at least one --rule is required")
			}

			var rules []filter.Rule
			for _, spec := range ruleSpecs {
				rule, err := parseRuleSpec(spec)
				if err != nil {
					return err
				}
				rules = append(rules, rule)
			}

			store := filter.NewViewStore(viewsPath())
			view, err := store.Save(args[0], rules)
			if err != nil {
				return err
			}

			fmt.Printf("Saved view %q (%s) with %d rule(s)\n", view.Name, view.ID, len(view.Rules))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&ruleSpecs, "rule", nil, "filter rule as field:operator:value (repeatable)")
	return cmd
}

func newViewsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved views",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := filter.NewViewStore(viewsPath())
			views, err := store.List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tRULES")
			for _, v := range views {
				fmt.Fprintf(w, "%s\t%s\t%d\n", v.ID, v.Name, len(v.Rules))
				for _, r := range v.Rules {
					fmt.Fprintf(w, "\t  %s %s %q\n", r.Field, r.Operator, r.Value)
				}
			}
			return w.Flush()
		},
	}
}

func newViewsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id-or-name>",
		Short: "Delete a saved view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := filter.NewViewStore(viewsPath())
			view, err := store.Find(args[0])
			if err != nil {
				return err
			}
			if err := store.Delete(view.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted view %q\n", view.Name)
			return nil
		},
	}
}
