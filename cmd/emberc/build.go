package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ember/internal/diag"
	"ember/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build [fixture]",
	Short: "Run resolve, lower, verify and lowir over a fixture program",
	Long: `Build drives the middle end end to end: Symbol Resolver, AST->Anvil
lowering, Anvil verification, and Anvil->LowIR lowering. With no
argument, the fixture named by ./ember.toml's [build].entry is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	prog, target, err := loadProgram(arg)
	if err != nil {
		return err
	}

	uiValue, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return err
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	bag := diag.NewBag()
	req := &pipeline.CompileRequest{
		Program: prog.AST,
		Types:   prog.Types,
		Strings: prog.Strings,
		Target:  target,
		Report:  bag,
		Digest:  pipeline.HashBytes([]byte(prog.Name)),
		Cache:   pipeline.NewModuleCache(1),
	}

	useTUI := shouldUseTUI(uiModeValue) && !quiet
	var result pipeline.CompileResult
	if useTUI {
		result, err = runCompileWithUI(cmd.Context(), fmt.Sprintf("emberc build %s", prog.Name), req)
	} else {
		result, err = pipeline.Compile(cmd.Context(), req)
	}

	for _, d := range bag.Diagnostics() {
		fmt.Fprintln(cmd.ErrOrStderr(), diag.RenderPlain(d))
	}
	if err != nil {
		return err
	}

	if showTimings {
		printStageTimings(os.Stdout, result.Timings)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "built %s: %d anvil functions, %d lowir functions\n",
			prog.Name, len(result.Anvil.ByName), len(result.LowIR.Funcs))
	}
	return nil
}
