package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joss/testsmith/internal/config"
	"github.com/joss/testsmith/internal/selftest"
	"github.com/joss/testsmith/internal/store"
)

func historyCmd() *cobra.Command {
	var (
		class string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent generation runs",
		Run: func(cmd *cobra.Command, args []string) {
			s, err := store.Open(config.GetPaths().Data)
			if err != nil {
				exitOnError(err)
			}
			defer s.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			runs, err := s.Recent(ctx, class, limit)
			if err != nil {
				exitOnError(err)
			}
			if len(runs) == 0 {
				fmt.Println("no runs recorded yet")
				return
			}
			fmt.Print(newRenderer().Runs(runs))
		},
	}

	cmd.Flags().StringVar(&class, "class", "", "Only show runs for this class")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the environment testsmith depends on",
		Long:  "Verifies Maven, the provider API key, the project layout, run history storage, and the graph database.",
		Run: func(cmd *cobra.Command, args []string) {
			env := selftest.Check()
			fmt.Print(env.Summary())
			if !env.IsHealthy() {
				exitOnError(fmt.Errorf("environment check failed"))
			}
		},
	}
}
