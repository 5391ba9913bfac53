package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/gestorjudicial/gestor/internal/docs"
	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/state"
)

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Create, edit and remove cases",
	Long: `Manage individual cases ("processos").

Examples:
  gestor case add --numero 123/24.0T9LSB --revisao 2025-03-01 --maximo 2025-09-01 \
      --arguido "João Silva" --crime Furto --medida "Prisão preventiva"
  gestor case edit <id> --revisao 2025-06-01
  gestor case duplicate <id> --numero 124/24.0T9LSB
  gestor case toggle <id>
  gestor case delete <id>
  gestor case link <id> acusacao.pdf despacho.pdf`,
}

// draftFlags holds the editable case fields of one subcommand.
type draftFlags struct {
	cmd *cobra.Command

	number, review, maximum, comments, phone         string
	crimes, measures, defendants, units, prosecutors []string
	judges, documents                                []string
}

func newDraftFlags(c *cobra.Command) *draftFlags {
	d := &draftFlags{cmd: c}
	f := c.Flags()
	f.StringVar(&d.number, "numero", "", "Case number")
	f.StringVar(&d.review, "revisao", "", "Review deadline (YYYY-MM-DD)")
	f.StringVar(&d.maximum, "maximo", "", "Maximum-duration deadline (YYYY-MM-DD)")
	f.StringVar(&d.comments, "comentarios", "", "Free-text comments")
	f.StringVar(&d.phone, "telefone", "", "Prosecutor phone")
	f.StringArrayVar(&d.crimes, "crime", nil, "Crime (repeatable)")
	f.StringArrayVar(&d.measures, "medida", nil, "Applied measure (repeatable)")
	f.StringArrayVar(&d.defendants, "arguido", nil, "Defendant (repeatable)")
	f.StringArrayVar(&d.units, "diap", nil, "DIAP (repeatable)")
	f.StringArrayVar(&d.prosecutors, "procurador", nil, "Prosecutor (repeatable)")
	f.StringArrayVar(&d.judges, "juiz", nil, "Judge (repeatable)")
	f.StringArrayVar(&d.documents, "documento", nil, "Linked document file name (repeatable)")
	return d
}

// apply copies the flags that were set on the command line onto draft.
func (d *draftFlags) apply(draft *model.CaseDraft) {
	f := d.cmd.Flags()
	str := func(name string, dst *string, v string) {
		if f.Changed(name) {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(name string, dst *model.StringList, v []string) {
		if f.Changed(name) {
			*dst = model.StringList(nil).Union(v...)
		}
	}
	str("numero", &draft.Number, d.number)
	str("revisao", &draft.ReviewDeadline, d.review)
	str("maximo", &draft.MaxDeadline, d.maximum)
	str("comentarios", &draft.Comments, d.comments)
	str("telefone", &draft.ProsecutorPhone, d.phone)
	list("crime", &draft.Crimes, d.crimes)
	list("medida", &draft.Measures, d.measures)
	list("arguido", &draft.Defendants, d.defendants)
	list("diap", &draft.Units, d.units)
	list("procurador", &draft.Prosecutors, d.prosecutors)
	list("juiz", &draft.Judges, d.judges)
	list("documento", &draft.Documents, d.documents)
}

var (
	caseAddCmd = &cobra.Command{
		Use:   "add",
		Short: "Create a pending case",
		Args:  cobra.NoArgs,
		RunE:  runCaseAdd,
	}
	caseEditCmd = &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a case; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE:  runCaseEdit,
	}
	caseDuplicateCmd = &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Create a new pending case prefilled from an existing one",
		Args:  cobra.ExactArgs(1),
		RunE:  runCaseDuplicate,
	}
	caseToggleCmd = &cobra.Command{
		Use:   "toggle <id>",
		Short: "Move a case between pendente and findo",
		Args:  cobra.ExactArgs(1),
		RunE:  runCaseToggle,
	}
	caseDeleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a case after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE:  runCaseDelete,
	}
	caseShowCmd = &cobra.Command{
		Use:   "show <id>",
		Short: "Show a case with its deadline status and missing documents",
		Args:  cobra.ExactArgs(1),
		RunE:  runCaseShow,
	}
	caseLinkCmd = &cobra.Command{
		Use:   "link <id> <file>...",
		Short: "Link documents from the bound folder to a case",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runCaseLink,
	}
	caseUnlinkCmd = &cobra.Command{
		Use:   "unlink <id> <file>...",
		Short: "Remove document links from a case",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runCaseUnlink,
	}
)

var (
	addFlags       *draftFlags
	editFlags      *draftFlags
	duplicateFlags *draftFlags
	deleteYes      bool
	linkNoCheck    bool
)

func init() {
	rootCmd.AddCommand(caseCmd)
	caseCmd.AddCommand(caseAddCmd, caseEditCmd, caseDuplicateCmd, caseToggleCmd,
		caseDeleteCmd, caseShowCmd, caseLinkCmd, caseUnlinkCmd)

	addFlags = newDraftFlags(caseAddCmd)
	editFlags = newDraftFlags(caseEditCmd)
	duplicateFlags = newDraftFlags(caseDuplicateCmd)
	caseDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking")
	caseLinkCmd.Flags().BoolVar(&linkNoCheck, "no-check", false, "Link names without resolving them in the bound folder")
}

func runCaseAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		var draft model.CaseDraft
		addFlags.apply(&draft)
		change, err := a.sess.Dispatch(ctx, state.AddCase{Draft: draft})
		if err != nil {
			return describeValidation(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created case %s (%s)\n", change.CaseID, draft.Number)
		return nil
	})
}

func runCaseEdit(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		c, err := a.sess.Case(args[0])
		if err != nil {
			return err
		}
		draft := model.DraftOf(c)
		editFlags.apply(&draft)
		if _, err := a.sess.Dispatch(ctx, state.UpdateCase{ID: c.ID, Draft: draft}); err != nil {
			return describeValidation(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated case %s\n", c.ID)
		return nil
	})
}

func runCaseDuplicate(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		change, err := a.sess.Dispatch(ctx, state.DuplicateCase{ID: args[0], Override: duplicateFlags.apply})
		if err != nil {
			return describeValidation(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created case %s from %s\n", change.CaseID, args[0])
		return nil
	})
}

func runCaseToggle(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if _, err := a.sess.Dispatch(ctx, state.ToggleStatus{ID: args[0]}); err != nil {
			return err
		}
		c, err := a.sess.Case(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Case %s is now %s\n", c.Number, c.Status)
		return nil
	})
}

func runCaseDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		pending, err := a.sess.RequestDelete(args[0])
		if err != nil {
			return err
		}
		ok, err := confirm(ctx, deleteYes, pending.Summary)
		if err != nil {
			a.sess.Cancel(pending.Ticket)
			return err
		}
		if !ok {
			a.sess.Cancel(pending.Ticket)
			fmt.Fprintln(cmd.OutOrStdout(), "Delete cancelled.")
			return nil
		}
		if _, err := a.sess.Confirm(ctx, pending.Ticket); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted case %s\n", args[0])
		return nil
	})
}

func runCaseShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		c, err := a.sess.Case(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		res := a.sess.Evaluator().Evaluate(c, a.sess.Now())
		printCase(out, c, res.Label(), a.sess.State().Refs.IsExternal)

		if len(c.Documents) == 0 {
			return nil
		}
		if err := a.bindDocuments(terminalPrompter()); err != nil {
			return err
		}
		missing, err := a.sess.MissingDocuments(ctx, c.ID)
		if err != nil {
			if docs.IsCancelled(err) {
				return nil
			}
			fmt.Fprintf(out, "   (%s)\n", docs.Notice("", err))
			return nil
		}
		for _, m := range missing {
			fmt.Fprintf(out, "   em falta: %s (%v)\n", m.Name, m.Err)
		}
		return nil
	})
}

func printCase(out io.Writer, c model.Case, label string, external func(model.Kind, string) bool) {
	title := c.Number
	if label != "" {
		title += " [" + label + "]"
	}
	fmt.Fprintln(out, title)
	fmt.Fprintf(out, "   ID: %s\n", c.ID)
	fmt.Fprintf(out, "   Status: %s\n", c.Status)
	fmt.Fprintf(out, "   Created: %s\n", c.Created().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "   Revisão: %s\n", model.FormatDate(c.ReviewDeadline))
	fmt.Fprintf(out, "   Prazo máximo: %s\n", model.FormatDate(c.MaxDeadline))
	for _, kind := range model.Kinds {
		values := c.Tags(kind)
		if len(values) == 0 {
			continue
		}
		marked := make([]string, len(values))
		for i, v := range values {
			marked[i] = v
			if external(kind, v) {
				marked[i] += " (externo)"
			}
		}
		fmt.Fprintf(out, "   %s: %s\n", kind, strings.Join(marked, ", "))
	}
	if c.ProsecutorPhone != "" {
		fmt.Fprintf(out, "   Telefone: %s\n", c.ProsecutorPhone)
	}
	if c.Comments != "" {
		fmt.Fprintf(out, "   Comentários: %s\n", c.Comments)
	}
	if len(c.Documents) > 0 {
		fmt.Fprintf(out, "   Documentos: %s\n", strings.Join(c.Documents, ", "))
	}
}

func runCaseLink(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		id, names := args[0], args[1:]
		if !linkNoCheck {
			if err := a.bindDocuments(terminalPrompter()); err != nil {
				return err
			}
			for _, name := range names {
				if _, err := a.sess.OpenDocument(ctx, name); err != nil {
					if docs.IsCancelled(err) {
						return nil
					}
					return fmt.Errorf("%s: %w", docs.Notice(name, err), err)
				}
			}
		}
		if _, err := a.sess.Dispatch(ctx, state.LinkDocuments{ID: id, Names: names}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Linked %d document(s) to %s\n", len(names), id)
		return nil
	})
}

func runCaseUnlink(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if _, err := a.sess.Dispatch(ctx, state.UnlinkDocuments{ID: args[0], Names: args[1:]}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unlinked %d document(s) from %s\n", len(args)-1, args[0])
		return nil
	})
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// describeValidation turns validator errors into flag-level messages.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	flags := map[string]string{
		"Number":         "--numero",
		"ReviewDeadline": "--revisao",
		"MaxDeadline":    "--maximo",
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := flags[fe.Field()]
		if name == "" {
			name = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, name+" is required")
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must be a date (YYYY-MM-DD), got %q", name, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", name, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
