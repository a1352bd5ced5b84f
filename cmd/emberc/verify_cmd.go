package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ember/internal/anvil"
	"ember/internal/diag"
	"ember/internal/lower"
	"ember/internal/resolve"
	"ember/internal/source"
	"ember/internal/types"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [fixture]",
	Short: "Resolve, lower to Anvil, and run the Anvil verifier only",
	Long: `Verify stops after component C's verifier (spec.md §4.C), the
mandatory gate between AST->Anvil lowering and Anvil->LowIR lowering.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	prog, _, err := loadProgram(arg)
	if err != nil {
		return err
	}

	ti := prog.Types
	if ti == nil {
		ti = types.NewInterner()
	}
	strs := prog.Strings
	if strs == nil {
		strs = source.NewInterner()
	}

	bag := diag.NewBag()
	res, ok := resolve.New(ti, strs, bag).ResolveProgram(prog.AST)
	if !ok {
		printDiagnostics(cmd, bag)
		return fmt.Errorf("symbol resolution failed for %s", prog.Name)
	}

	mod, _, ok := lower.New(res, bag).LowerProgram(prog.AST)
	if !ok {
		printDiagnostics(cmd, bag)
		return fmt.Errorf("lowering to anvil failed for %s", prog.Name)
	}

	if err := anvil.Verify(mod); err != nil {
		printDiagnostics(cmd, bag)
		return fmt.Errorf("anvil verification failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: anvil module verified ok (%d functions)\n", prog.Name, len(mod.ByName))
	return nil
}

func printDiagnostics(cmd *cobra.Command, bag *diag.Bag) {
	for _, d := range bag.Diagnostics() {
		fmt.Fprintln(cmd.ErrOrStderr(), diag.RenderPlain(d))
	}
}
