package treebuilder

import "testing"

func TestInsertionModeString(t *testing.T) {
	// Spot-check the label table at its edges and a few interior points;
	// TestInsertionModeLabelsComplete covers the rest.
	spot := map[InsertionMode]string{
		Initial:            "initial",
		InBody:             "in body",
		InTableText:        "in table text",
		InSelectInTable:    "in select in table",
		AfterAfterFrameset: "after after frameset",
		InsertionMode(-1):  "unknown",
		InsertionMode(123): "unknown",
	}
	for mode, want := range spot {
		if got := mode.String(); got != want {
			t.Errorf("InsertionMode(%d).String() = %q, want %q", mode, got, want)
		}
	}
}

func TestInsertionModeLabelsComplete(t *testing.T) {
	for mode := Initial; mode <= AfterAfterFrameset; mode++ {
		if mode.String() == "unknown" {
			t.Errorf("mode %d has no label", mode)
		}
	}
}
