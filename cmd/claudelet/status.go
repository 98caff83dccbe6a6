package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasonkneen/claudelet/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status [context-id]",
	Short: "Show a persisted context and its results",
	Long: `Status reads the local database written by "run --persist" and prints
the lifecycle row and settled results for a context.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := state.Open(state.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("open state db: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migrate state db: %w", err)
		}

		contextID := args[0]
		rec, err := db.GetContext(contextID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("no persisted context %q in %s", contextID, db.Path())
		}

		fmt.Println(headerStyle.Render(rec.ID))
		fmt.Printf("request: %s\n", rec.Request)
		fmt.Printf("status:  %s\n", rec.Status)
		fmt.Printf("tier:    %s\n", rec.Tier)
		fmt.Printf("created: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
		if rec.CompletedAt != nil {
			fmt.Printf("ended:   %s\n", rec.CompletedAt.Format("2006-01-02 15:04:05"))
		}

		results, err := db.ListResults(contextID)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Status == "failed" {
				failColor.Printf("  x %s (%s): %s\n", r.TaskID, r.Tier, r.Error)
			} else {
				okColor.Printf("  + %s (%s)\n", r.TaskID, r.Tier)
			}
		}
		return nil
	},
}
