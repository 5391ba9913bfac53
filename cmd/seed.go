package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gestorjudicial/gestor/internal/model"
	"github.com/gestorjudicial/gestor/internal/state"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed sample reference lists and cases",
	Long: `Seed sample reference lists and cases into the local dataset.
This is useful for trying the interface on an empty installation. Nothing is
added when cases already exist.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if n := len(a.sess.State().Cases); n > 0 {
			a.log.Infow("seed skipped, dataset not empty", "cases", n)
			fmt.Fprintf(cmd.OutOrStdout(), "Dataset already has %d cases; nothing seeded.\n", n)
			return nil
		}

		start := time.Now()
		a.log.Infow("seeding sample data")
		refs := []state.AddReference{
			{Kind: model.KindCrimes, Fields: model.EntryFields{Label: "Furto qualificado"}},
			{Kind: model.KindCrimes, Fields: model.EntryFields{Label: "Tráfico de estupefacientes"}},
			{Kind: model.KindCrimes, Fields: model.EntryFields{Label: "Violência doméstica"}},
			{Kind: model.KindUnits, Fields: model.EntryFields{Label: "DIAP Lisboa - 1ª Secção", Phone: "213 000 001"}},
			{Kind: model.KindUnits, Fields: model.EntryFields{Label: "DIAP Porto - 2ª Secção", Phone: "222 000 002"}},
			{Kind: model.KindMeasures, Fields: model.EntryFields{Label: "Prisão preventiva"}},
			{Kind: model.KindMeasures, Fields: model.EntryFields{Label: "Obrigação de permanência na habitação"}},
			{Kind: model.KindMeasures, Fields: model.EntryFields{Label: "Proibição de contactos"}},
			{Kind: model.KindProsecutors, Fields: model.EntryFields{Label: "Dra. Maria Lopes", Phone: "912 000 001", Email: "maria.lopes@example.pt"}},
			{Kind: model.KindProsecutors, Fields: model.EntryFields{Label: "Dr. Carlos Nunes", Phone: "912 000 002", Email: "carlos.nunes@example.pt"}},
			{Kind: model.KindJudges, Fields: model.EntryFields{Label: "Dr. Rui Almeida", Email: "rui.almeida@example.pt"}},
			{Kind: model.KindDefendants, Fields: model.EntryFields{Label: "João Silva", TaxID: "123456789"}},
			{Kind: model.KindDefendants, Fields: model.EntryFields{Label: "Ana Costa", TaxID: "987654321"}},
		}
		for _, r := range refs {
			if _, err := a.sess.Dispatch(ctx, r); err != nil {
				return fmt.Errorf("failed to create reference: %w", err)
			}
		}

		day := func(offset int) string {
			return a.sess.Now().AddDate(0, 0, offset).Format(model.DateLayout)
		}
		drafts := []model.CaseDraft{
			{
				Number:         "1234/24.0T9LSB",
				Crimes:         model.StringList{"Tráfico de estupefacientes"},
				Measures:       model.StringList{"Prisão preventiva"},
				ReviewDeadline: day(5),
				MaxDeadline:    day(120),
				Defendants:     model.StringList{"João Silva"},
				Units:          model.StringList{"DIAP Lisboa - 1ª Secção"},
				Prosecutors:    model.StringList{"Dra. Maria Lopes"},
				Judges:         model.StringList{"Dr. Rui Almeida"},
				Comments:       "Reexame trimestral.",
			},
			{
				Number:         "567/23.5PBPRT",
				Crimes:         model.StringList{"Violência doméstica"},
				Measures:       model.StringList{"Proibição de contactos"},
				ReviewDeadline: day(40),
				MaxDeadline:    day(-2),
				Defendants:     model.StringList{"Ana Costa"},
				Units:          model.StringList{"DIAP Porto - 2ª Secção"},
				Prosecutors:    model.StringList{"Dr. Carlos Nunes"},
			},
			{
				Number:         "89/25.1JAFAR",
				Crimes:         model.StringList{"Furto qualificado", "Burla"},
				Measures:       model.StringList{"Obrigação de permanência na habitação"},
				ReviewDeadline: day(60),
				MaxDeadline:    day(200),
				Defendants:     model.StringList{"Pedro Martins"},
				Prosecutors:    model.StringList{"Dra. Maria Lopes"},
			},
		}
		for _, d := range drafts {
			if _, err := a.sess.Dispatch(ctx, state.AddCase{Draft: d}); err != nil {
				return fmt.Errorf("failed to create sample case: %w", err)
			}
		}

		a.log.Infow("seed complete", "references", len(refs), "cases", len(drafts), "took", time.Since(start).Round(time.Millisecond))
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d reference entries and %d cases.\n", len(refs), len(drafts))
		return nil
	})
}
