package runtimeabi_test

import (
	"testing"

	"ember/internal/runtimeabi"
)

func TestLookup_KnownSymbolsResolve(t *testing.T) {
	for _, symbol := range []string{"gc_alloc", "throw", "future_value", "channel_send", "json_field"} {
		if _, ok := runtimeabi.Lookup(symbol); !ok {
			t.Fatalf("expected %q to be declared in the runtime ABI table", symbol)
		}
	}
}

func TestLookup_UnknownSymbolFails(t *testing.T) {
	if _, ok := runtimeabi.Lookup("does_not_exist"); ok {
		t.Fatalf("expected an undeclared symbol to fail lookup")
	}
}

func TestTable_ThrowAndRethrowNeverReturn(t *testing.T) {
	for _, symbol := range []string{"throw", "rethrow"} {
		d, ok := runtimeabi.Lookup(symbol)
		if !ok {
			t.Fatalf("expected %q to be declared", symbol)
		}
		if d.Result != runtimeabi.KindNever {
			t.Fatalf("expected %q to be declared KindNever, got %v", symbol, d.Result)
		}
	}
}

func TestTable_NoDuplicateSymbols(t *testing.T) {
	seen := make(map[string]bool, len(runtimeabi.Table))
	for _, d := range runtimeabi.Table {
		if seen[d.Symbol] {
			t.Fatalf("duplicate runtime ABI symbol %q", d.Symbol)
		}
		seen[d.Symbol] = true
	}
}
