package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/state"
)

var refCmd = &cobra.Command{
	Use:   "ref",
	Short: "Manage reference lists",
	Long: `Manage the reference lists used to classify cases: crimes, diaps, medidas,
procuradores, juizes and arguidos. Cases keep their own labels, so removing
or renaming an entry never changes existing cases.

Examples:
  gestor ref list procuradores
  gestor ref add procurador --label "Dra. Maria Lopes" --email maria.lopes@example.pt
  gestor ref edit crime <id> --label "Furto qualificado"
  gestor ref rm medida <id>`,
}

var (
	refListCmd = &cobra.Command{
		Use:   "list [kind]",
		Short: "List one or all reference lists",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRefList,
	}
	refAddCmd = &cobra.Command{
		Use:   "add <kind>",
		Short: "Add a reference entry",
		Args:  cobra.ExactArgs(1),
		RunE:  runRefAdd,
	}
	refEditCmd = &cobra.Command{
		Use:   "edit <kind> <id>",
		Short: "Edit a reference entry; unset flags keep their value",
		Args:  cobra.ExactArgs(2),
		RunE:  runRefEdit,
	}
	refRmCmd = &cobra.Command{
		Use:     "rm <kind> <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a reference entry",
		Args:    cobra.ExactArgs(2),
		RunE:    runRefRm,
	}
)

var refFields model.EntryFields

func init() {
	rootCmd.AddCommand(refCmd)
	refCmd.AddCommand(refListCmd, refAddCmd, refEditCmd, refRmCmd)

	for _, c := range []*cobra.Command{refAddCmd, refEditCmd} {
		c.Flags().StringVar(&refFields.Label, "label", "", "Label (value or name)")
		c.Flags().StringVar(&refFields.Phone, "phone", "", "Phone")
		c.Flags().StringVar(&refFields.Email, "email", "", "E-mail (people only)")
		c.Flags().StringVar(&refFields.TaxID, "nif", "", "Tax id (defendants only)")
	}
}

func runRefList(cmd *cobra.Command, args []string) error {
	kinds := model.Kinds
	if len(args) == 1 {
		k, err := model.ParseKind(args[0])
		if err != nil {
			return err
		}
		kinds = []model.Kind{k}
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		refs := a.sess.State().Refs
		out := cmd.OutOrStdout()
		for _, k := range kinds {
			entries := refs.Entries(k)
			fmt.Fprintf(out, "%s (%d):\n", k, len(entries))
			for _, e := range entries {
				line := fmt.Sprintf("  %s  %s", e.EntryID(), e.Label())
				if s := e.Secondary(); s != "" {
					line += "  (" + s + ")"
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out)
		}
		return nil
	})
}

func runRefAdd(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		change, err := a.sess.Dispatch(ctx, state.AddReference{Kind: kind, Fields: refFields})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", change.Details)
		return nil
	})
}

func runRefEdit(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}
	id := args[1]
	return withApp(cmd, func(ctx context.Context, a *app) error {
		current, ok := findEntry(a.sess.State().Refs.Entries(kind), id)
		if !ok {
			return fmt.Errorf("%s %s: %w", kind, id, state.ErrReferenceNotFound)
		}
		fields := entryFields(current)
		f := cmd.Flags()
		if f.Changed("label") {
			fields.Label = refFields.Label
		}
		if f.Changed("phone") {
			fields.Phone = refFields.Phone
		}
		if f.Changed("email") {
			fields.Email = refFields.Email
		}
		if f.Changed("nif") {
			fields.TaxID = refFields.TaxID
		}
		if _, err := a.sess.Dispatch(ctx, state.EditReference{Kind: kind, ID: id, Fields: fields}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", kind, id)
		return nil
	})
}

func runRefRm(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if _, err := a.sess.Dispatch(ctx, state.RemoveReference{Kind: kind, ID: args[1]}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", kind, args[1])
		return nil
	})
}

func findEntry(entries []model.Entry, id string) (model.Entry, bool) {
	for _, e := range entries {
		if e.EntryID() == id {
			return e, true
		}
	}
	return nil, false
}

func entryFields(e model.Entry) model.EntryFields {
	switch v := e.(type) {
	case model.RefItem:
		return model.EntryFields{Label: v.Value, Phone: v.Phone}
	case model.Person:
		return model.EntryFields{Label: v.Name, Phone: v.Phone, Email: v.Email, TaxID: v.TaxID}
	}
	return model.EntryFields{Label: e.Label()}
}
