package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joss/testsmith/internal/analyze"
	"github.com/joss/testsmith/internal/depgraph"
)

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <class>",
		Short: "Show the structure of a Java class",
		Long:  "Parses a Java source file and prints its package, type kind, fields, and method signatures.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path, err := resolveClass(args[0])
			if err != nil {
				exitOnError(err)
			}
			unit, err := analyze.NewExtractor().Extract(path)
			if err != nil {
				exitOnError(err)
			}
			fmt.Print(newRenderer().Unit(unit))
		},
	}
}

func depsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps <class>",
		Short: "Show the collaborator dependency graph of a class",
		Long:  "Walks collaborator fields transitively from the class and prints the resulting graph.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
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
		},
	}
}

func mocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mocks <class>",
		Short: "Show which collaborators a unit test must mock",
		Long:  "Derives the @Mock fields and the collaborator methods worth stubbing for a class.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path, err := resolveClass(args[0])
			if err != nil {
				exitOnError(err)
			}
			unit, err := analyze.NewExtractor().Extract(path)
			if err != nil {
				exitOnError(err)
			}
			g := depgraph.NewBuilder(newFinder()).Build(path)
			mocks := depgraph.RequiredMocks(g, unit.Name)
			fmt.Print(newRenderer().Mocks(unit.Name, mocks))
		},
	}
}
