package fixtures_test

import (
	"strings"
	"testing"

	"ember/internal/fixtures"
)

func TestBuild_EveryRegisteredNameSucceeds(t *testing.T) {
	for _, name := range fixtures.Names() {
		prog, err := fixtures.Build(name)
		if err != nil {
			t.Fatalf("Build(%q): %v", name, err)
		}
		if prog.AST == nil || prog.Types == nil || prog.Strings == nil {
			t.Fatalf("Build(%q) returned an incomplete fixture: %+v", name, prog)
		}
	}
}

func TestBuild_UnknownNameListsAvailableFixtures(t *testing.T) {
	_, err := fixtures.Build("does-not-exist")
	if err == nil {
		t.Fatalf("expected an error for an unknown fixture name")
	}
	for _, name := range fixtures.Names() {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not list available fixture %q", err, name)
		}
	}
}
