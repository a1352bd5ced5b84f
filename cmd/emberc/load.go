package main

import (
	"fmt"

	"ember/internal/config"
	"ember/internal/fixtures"
	"ember/internal/layout"
)

// loadProgram resolves the fixture named by either an explicit [path]
// argument or, failing that, ember.toml's [build].entry. There is no
// lexer/parser in this repo (spec.md §1 places them out of scope), so
// every emberc invocation ultimately names one of internal/fixtures'
// hand-built typed ASTs rather than a source file.
func loadProgram(arg string) (fixtures.Program, layout.Target, error) {
	target := layout.Host64
	name := arg
	if name == "" {
		manifest, found, err := config.FindAndLoad(".")
		if err != nil {
			return fixtures.Program{}, target, err
		}
		if !found {
			return fixtures.Program{}, target, fmt.Errorf("no ember.toml found and no fixture name given (available: %v)", fixtures.Names())
		}
		name = manifest.Build.Entry
		target, err = manifest.Target.Layout()
		if err != nil {
			return fixtures.Program{}, target, err
		}
	}
	prog, err := fixtures.Build(name)
	if err != nil {
		return fixtures.Program{}, target, err
	}
	return prog, target, nil
}
