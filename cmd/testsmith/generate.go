package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/joss/testsmith/internal/config"
	"github.com/joss/testsmith/internal/domain"
	"github.com/joss/testsmith/internal/exec"
	"github.com/joss/testsmith/internal/generate"
	"github.com/joss/testsmith/internal/maven"
	"github.com/joss/testsmith/internal/store"
	"github.com/joss/testsmith/internal/tui"
	"github.com/joss/testsmith/internal/validate"
	"github.com/joss/testsmith/internal/writer"
)

func generateCmd() *cobra.Command {
	var (
		testType   string
		doValidate bool
		doSave     bool
		doRefine   bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "generate <class>",
		Short: "Generate a test for a class",
		Long: `Generates a unit or integration test for the class using the configured
LLM provider. With --validate the candidate is written to the project,
compiled and run through Maven, and repaired on failure (up to 3
attempts). With --save the test is written without validation.
Without either flag the test is printed to stdout.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			integration := testType == "integration"
			if testType != "unit" && testType != "integration" {
				exitOnError(fmt.Errorf("unknown test type %q (want unit or integration)", testType))
			}

			svc, err := newService()
			if err != nil {
				exitOnError(err)
			}

			w := writer.New(projectRoot())
			ctx := context.Background()

			prog := startProgress("generating test with " + config.Env().Model)
			code, unit, err := svc.Generate(ctx, args[0], integration)
			prog.Stop()
			if err != nil {
				exitOnError(err)
			}

			if recommended := generate.RecommendedTestType(unit.Name); recommended != testType {
				fmt.Fprintf(os.Stderr, "hint: %s classes usually get %s tests (--type %s)\n", unit.Name, recommended, recommended)
			}

			if doRefine {
				code = refineLoop(ctx, svc, code, os.Stdin, os.Stdout)
			}

			target := domain.TestTarget{Class: unit.Name, Package: unit.Package}
			if !force && !doValidate && doSave && w.TestExists(target, integration) {
				exitOnError(fmt.Errorf("test already exists at %s (use --force to overwrite)", w.TestPath(target, integration)))
			}

			run := &domain.Run{
				SessionID: store.NewSessionID(),
				Target:    target,
				TestType:  testType,
			}

			switch {
			case doValidate:
				inv := maven.New(projectRoot(), exec.NewOSRunner())
				loop := validate.NewLoop(inv, w, svc.NewRepairer())

				prog = startProgress("validating " + target.TestClass(integration))
				res := loop.Run(ctx, code, target, integration)
				prog.Stop()

				fmt.Print(newRenderer().Attempts(res.Attempts))
				run.Validated = true
				run.Success = res.Success
				run.Attempts = res.Attempts
				recordRun(ctx, run)
				if !res.Success {
					fmt.Fprintf(os.Stderr, "validation failed, last candidate kept at %s\n", w.TestPath(target, integration))
					os.Exit(1)
				}
				fmt.Printf("test validated and written to %s\n", w.TestPath(target, integration))
			case doSave:
				path, err := w.Write(target, code, integration)
				if err != nil {
					exitOnError(err)
				}
				recordRun(ctx, run)
				fmt.Printf("test written to %s\n", path)
			default:
				fmt.Println(code)
				recordRun(ctx, run)
			}
		},
	}

	cmd.Flags().StringVar(&testType, "type", "unit", "Test type: unit or integration")
	cmd.Flags().BoolVar(&doValidate, "validate", false, "Compile and run the test, repairing on failure")
	cmd.Flags().BoolVar(&doSave, "save", false, "Write the test into the project without validating")
	cmd.Flags().BoolVar(&doRefine, "refine", false, "Interactively refine the test with feedback before saving")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing test file")
	return cmd
}

// refiner is the slice of the generation service the feedback loop
// needs.
type refiner interface {
	Refine(ctx context.Context, currentCode, feedback string) (string, error)
}

// refineLoop feeds feedback lines to the model on the generation
// conversation. An empty line or EOF keeps the current candidate.
func refineLoop(ctx context.Context, svc refiner, code string, in io.Reader, out io.Writer) string {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "feedback (empty line to finish)> ")
		if !scanner.Scan() {
			break
		}
		feedback := strings.TrimSpace(scanner.Text())
		if feedback == "" {
			break
		}
		refined, err := svc.Refine(ctx, code, feedback)
		if err != nil {
			fmt.Fprintf(os.Stderr, "refine failed: %v\n", err)
			break
		}
		code = refined
		fmt.Fprintln(out, code)
	}
	return code
}

// recordRun persists run history on a best-effort basis. A broken
// history store should never abort a generation that already happened.
func recordRun(ctx context.Context, run *domain.Run) {
	s, err := store.Open(config.GetPaths().Data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: run history unavailable: %v\n", err)
		return
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Save(ctx, run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record run: %v\n", err)
	}
}

// startProgress shows a spinner when stdout is a terminal. The returned
// handle is nil-safe, so callers can Stop it unconditionally.
func startProgress(step string) *tui.Progress {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}
	return tui.Start(step)
}
