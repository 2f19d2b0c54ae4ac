package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/luminacrm/lumina/internal/entity"
	"github.com/luminacrm/lumina/internal/filter"
	"github.com/luminacrm/lumina/internal/usecase"
)

func newLeadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "List and mutate leads",
	}

	cmd.AddCommand(newLeadsListCmd())
	cmd.AddCommand(newLeadsAddCmd())
	cmd.AddCommand(newLeadsStatusCmd())
	cmd.AddCommand(newLeadsSetCmd())
	cmd.AddCommand(newLeadsDeleteCmd())
	cmd.AddCommand(newLeadsRestoreCmd())
	cmd.AddCommand(newLeadsNoteCmd())

	return cmd
}

func newLeadsListCmd() *cobra.Command {
	var (
		query     string
		viewName  string
		ruleSpecs []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads, optionally filtered by rules or a saved view",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()

			_, store, err := newPipeline(ctx)
			if err != nil {
				return err
			}

			rules, err := resolveRules(viewName, ruleSpecs)
			if err != nil {
				return err
			}

			leads := filter.Apply(store.Snapshot(), rules, query)
			printLeadTable(leads)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "search name, email and company")
	cmd.Flags().StringVar(&viewName, "view", "", "apply a saved view by id or name")
	cmd.Flags().StringArrayVar(&ruleSpecs, "rule", nil, "filter rule as field:operator:value (repeatable)")
	return cmd
}

func newLeadsAddCmd() *cobra.Command {
	var (
		in     usecase.CreateLeadInput
		source string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a lead",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Source = entity.ParseSource(source)

			ctx, cancel := cmdContext()
			defer cancel()

			pipeline, _, err := newPipeline(ctx)
			if err != nil {
				return err
			}

			lead, err := pipeline.Create(ctx, in)
			if err != nil {
				return err
			}

			fmt.Printf("Created lead %s (%s)\n", lead.Name, lead.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "lead name (required)")
	cmd.Flags().StringVar(&in.Email, "email", "", "lead email (required)")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&in.Company, "company", "", "company")
	cmd.Flags().StringVar(&in.Title, "title", "", "job title")
	cmd.Flags().StringVar(&source, "source", "", "lead source")
	cmd.Flags().StringVar(&in.Message, "message", "", "initial message")
	cmd.Flags().Float64Var(&in.Value, "value", 0, "deal value")
	return cmd
}

func newLeadsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <new|contacted|converted|lost>",
		Short: "Move a lead to another pipeline status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := entity.ParseStatus(args[1])
			if status == entity.StatusUnknown {
				return fmt.Errorf("invalid status %q", args[1])
			}

			ctx, cancel := cmdContext()
			defer cancel()

			pipeline, _, err := newPipeline(ctx)
			if err != nil {
				return err
			}

			if err := pipeline.UpdateStatus(ctx, args[0], status); err != nil {
				return err
			}
			fmt.Printf("Lead %s is now %s\n", args[0], status)
			return nil
		},
	}
}

func newLeadsSetCmd() *cobra.Command {
	var (
		name, email, phone, company, title, source, message string
		value                                               float64
	)

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update lead fields; only the flags you pass are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch entity.LeadPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("email") {
				patch.Email = &email
			}
			if cmd.Flags().Changed("phone") {
				patch.Phone = &phone
			}
			if cmd.Flags().Changed("company") {
				patch.Company = &company
			}
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("source") {
				src := entity.ParseSource(source)
				patch.Source = &src
			}
			if cmd.Flags().Changed("message") {
				patch.Message = &message
			}
			if cmd.Flags().Changed("value") {
				patch.Value = &value
			}

			ctx, cancel := cmdContext()
			defer cancel()

			pipeline, _, err := newPipeline(ctx)
			if err != nil {
				return err
			}

			if err := pipeline.UpdateFields(ctx, args[0], patch); err != nil {
				return err
			}
			fmt.Printf("Updated lead %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "lead name")
	cmd.Flags().StringVar(&email, "email", "", "lead email")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&company, "company", "", "company")
	cmd.Flags().StringVar(&title, "title", "", "job title")
	cmd.Flags().StringVar(&source, "source", "", "lead source")
	cmd.Flags().StringVar(&message, "message", "", "message")
	cmd.Flags().Float64Var(&value, "value", 0, "deal value")
	return cmd
}

func newLeadsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a lead and its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()

			pipeline, _, err := newPipeline(ctx)
			if err != nil {
				return err
			}

			lead, err := pipeline.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			if err := stashDeletedLead(lastDeletedPath(), *lead); err != nil {
				fmt.Fprintf(os.Stderr, "could not stash deleted lead for undo: %v\n", err)
				fmt.Printf("Deleted lead %s (%s)\n", lead.Name, lead.ID)
				return nil
			}
			fmt.Printf("Deleted lead %s (%s). Undo with: luminactl leads restore\n", lead.Name, lead.ID)
			return nil
		},
	}
}

func newLeadsRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Undo the most recent delete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lead, err := loadDeletedLead(lastDeletedPath())
			if err != nil {
				return err
			}

			ctx, cancel := cmdContext()
			defer cancel()

			pipeline, _, err := newPipeline(ctx)
			if err != nil {
				return err
			}

			if err := pipeline.Restore(ctx, lead); err != nil {
				return err
			}
			os.Remove(lastDeletedPath())
			fmt.Printf("Restored lead %s\n", lead.Name)
			return nil
		},
	}
}

func stashDeletedLead(path string, lead entity.Lead) error {
	raw, err := yaml.Marshal(lead)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func loadDeletedLead(path string) (entity.Lead, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return entity.Lead{}, fmt.Errorf("nothing to restore: %w", err)
	}
	var lead entity.Lead
	if err := yaml.Unmarshal(raw, &lead); err != nil {
		return entity.Lead{}, err
	}
	return lead, nil
}

func newLeadsNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <id> <text...>",
		Short: "Attach a note to a lead",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()

			pipeline, _, err := newPipeline(ctx)
			if err != nil {
				return err
			}

			text := strings.Join(args[1:], " ")
			if err := pipeline.AddNote(ctx, args[0], text); err != nil {
				return err
			}
			fmt.Printf("Added note to lead %s\n", args[0])
			return nil
		},
	}
}

func printLeadTable(leads []entity.Lead) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCOMPANY\tSOURCE\tSTATUS\tVALUE\tADDED")
	for _, l := range leads {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			l.ID, l.Name, l.Email, l.Company, l.Source, l.Status,
			l.Value, l.DateAdded.Format("2006-01-02"))
	}
	w.Flush()
}
