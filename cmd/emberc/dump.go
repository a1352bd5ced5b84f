package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ember/internal/anvil"
	"ember/internal/backend"
	"ember/internal/diag"
	"ember/internal/pipeline"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [fixture]",
	Short: "Print the Anvil or Low IR textual listing for a fixture",
	Long: `Dump renders the deterministic, stable textual listing described by
spec.md §6: one header line per function, one line per basic block, and
indented, typed opcode lines. Pass --stage=lowir to print the Low IR
listing backend.EmitModule produces instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().String("stage", "anvil", "which IR to dump (anvil|lowir)")
}

func runDump(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	prog, target, err := loadProgram(arg)
	if err != nil {
		return err
	}
	stage, err := cmd.Flags().GetString("stage")
	if err != nil {
		return err
	}

	bag := diag.NewBag()
	result, err := pipeline.Compile(cmd.Context(), &pipeline.CompileRequest{
		Program: prog.AST,
		Types:   prog.Types,
		Strings: prog.Strings,
		Target:  target,
		Report:  bag,
	})
	if err != nil {
		printDiagnostics(cmd, bag)
		return err
	}

	switch stage {
	case "anvil":
		return anvil.Dump(cmd.OutOrStdout(), result.Anvil)
	case "lowir":
		text, err := backend.EmitModule(result.LowIR)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	default:
		return fmt.Errorf("unsupported --stage %q (must be anvil or lowir)", stage)
	}
}
