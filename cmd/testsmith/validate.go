package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joss/testsmith/internal/analyze"
	"github.com/joss/testsmith/internal/domain"
	"github.com/joss/testsmith/internal/exec"
	"github.com/joss/testsmith/internal/maven"
	"github.com/joss/testsmith/internal/validate"
	"github.com/joss/testsmith/internal/writer"
)

func validateCmd() *cobra.Command {
	var testType string

	cmd := &cobra.Command{
		Use:   "validate <class>",
		Short: "Compile and run the existing test for a class",
		Long: `Runs the already-written test for the class through Maven, first
compiling the test sources and then executing the test class. No LLM
calls are made and the test file is left untouched.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			integration := testType == "integration"
			if testType != "unit" && testType != "integration" {
				exitOnError(fmt.Errorf("unknown test type %q (want unit or integration)", testType))
			}

			path, err := resolveClass(args[0])
			if err != nil {
				exitOnError(err)
			}
			unit, err := analyze.NewExtractor().Extract(path)
			if err != nil {
				exitOnError(err)
			}

			target := domain.TestTarget{Class: unit.Name, Package: unit.Package}
			w := writer.New(projectRoot())
			if !w.TestExists(target, integration) {
				exitOnError(fmt.Errorf("no test found at %s (run generate first)", w.TestPath(target, integration)))
			}

			testClass := target.TestClass(integration)
			inv := maven.New(projectRoot(), exec.NewOSRunner())
			ctx := context.Background()

			prog := startProgress("compiling " + testClass)
			res := inv.CompileTest(ctx, testClass)
			prog.Stop()
			if !res.OK() {
				reportFailure(validate.Classify(res.Output))
			}

			prog = startProgress("running " + testClass)
			res = inv.RunTest(ctx, testClass)
			prog.Stop()
			if !res.OK() {
				reportFailure(validate.Classify(res.Output))
			}

			fmt.Printf("✓ %s passed\n", testClass)
		},
	}

	cmd.Flags().StringVar(&testType, "type", "unit", "Test type: unit or integration")
	return cmd
}

func reportFailure(failure domain.FailureRecord) {
	if failure.Line > 0 {
		fmt.Fprintf(os.Stderr, "✗ %s failure at line %d: %s\n", failure.Kind, failure.Line, failure.Message)
	} else {
		fmt.Fprintf(os.Stderr, "✗ %s failure: %s\n", failure.Kind, failure.Message)
	}
	os.Exit(1)
}
