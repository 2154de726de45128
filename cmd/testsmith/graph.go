package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joss/testsmith/internal/analyze"
	"github.com/joss/testsmith/internal/depgraph"
	"github.com/joss/testsmith/internal/graph"
	"github.com/joss/testsmith/internal/logging"
	"github.com/joss/testsmith/internal/render"
)

func graphCmd() *cobra.Command {
	var (
		export bool
		stored bool
	)

	cmd := &cobra.Command{
		Use:   "graph <class>",
		Short: "Inspect or export the dependency graph of a class",
		Long: `Builds the collaborator graph rooted at the class. With --export the
graph is merged into the configured Neo4j/Memgraph database as Class
nodes and DEPENDS_ON edges. With --stored the previously exported graph
is read back from the database instead of the source tree.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if stored {
				showStoredGraph(args[0])
				return
			}

			path, err := resolveClass(args[0])
			if err != nil {
				exitOnError(err)
			}
			unit, err := analyze.NewExtractor().Extract(path)
			if err != nil {
				exitOnError(err)
			}
			g := depgraph.NewBuilder(newFinder()).Build(path)
			fmt.Print(newRenderer().Graph(g, unit.Name))

			if !export {
				return
			}

			db, err := graph.Connect()
			if err != nil {
				exitOnError(fmt.Errorf("graph database unavailable: %w", err))
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			nodes, edges, err := graph.NewExporter(db, logging.New("graph")).Export(ctx, g)
			if err != nil {
				exitOnError(err)
			}
			fmt.Printf("exported %d classes and %d dependencies\n", nodes, edges)
		},
	}

	cmd.Flags().BoolVar(&export, "export", false, "Merge the graph into the graph database")
	cmd.Flags().BoolVar(&stored, "stored", false, "Read the previously exported graph from the database")
	return cmd
}

func showStoredGraph(class string) {
	db, err := graph.Connect()
	if err != nil {
		exitOnError(fmt.Errorf("graph database unavailable: %w", err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	q := graph.NewQuerier(db)
	deps, err := q.Dependencies(ctx, class)
	if err != nil {
		exitOnError(err)
	}
	dependents, err := q.DependentCount(ctx, class)
	if err != nil {
		exitOnError(err)
	}

	w := render.Stdout()
	w.Println("%s (stored)", class)
	if len(deps) == 0 {
		w.Item("no stored dependencies (run graph --export first)")
	}
	for _, d := range deps {
		w.Nested("%s %s", d.Class, d.Field)
	}
	w.Line()
	w.Println("%d dependents", dependents)
}
