package domain_test

import (
	"errors"
	"testing"

	"github.com/conveyorci/conveyor/internal/core/domain"
)

func TestParseActionRef(t *testing.T) {
	ref, err := domain.ParseActionRef("checkout@v4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Name != "checkout" || ref.Pin != "v4" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if ref.String() != "checkout@v4" {
		t.Fatalf("unexpected canonical form: %s", ref.String())
	}
}

func TestParseActionRef_Unpinned(t *testing.T) {
	for _, raw := range []string{"checkout", "checkout@"} {
		_, err := domain.ParseActionRef(raw)
		if !errors.Is(err, domain.ErrUnpinnedAction) {
			t.Errorf("ParseActionRef(%q): expected ErrUnpinnedAction, got %v", raw, err)
		}
	}
}

func TestParseActionRef_EmptyName(t *testing.T) {
	_, err := domain.ParseActionRef("@v1")
	if !errors.Is(err, domain.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestStep_Validate(t *testing.T) {
	cases := []struct {
		name string
		step domain.Step
		ok   bool
	}{
		{"run only", domain.Step{Run: "cargo test"}, true},
		{"uses only", domain.Step{Uses: domain.ActionRef{Name: "checkout", Pin: "v4"}}, true},
		{"both", domain.Step{Run: "cargo test", Uses: domain.ActionRef{Name: "checkout", Pin: "v4"}}, false},
		{"neither", domain.Step{}, false},
	}

	for _, tc := range cases {
		err := tc.step.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, domain.ErrStepConflict) {
			t.Errorf("%s: expected ErrStepConflict, got %v", tc.name, err)
		}
	}
}

func TestToolsetID_Deterministic(t *testing.T) {
	a := domain.ToolsetID(map[string]string{"rust": "rust@1.74.0", "cargo": "cargo@1.74.0"})
	b := domain.ToolsetID(map[string]string{"cargo": "cargo@1.74.0", "rust": "rust@1.74.0"})
	if a != b {
		t.Fatal("ToolsetID must be independent of map iteration order")
	}

	c := domain.ToolsetID(map[string]string{"rust": "rust@1.75.0"})
	if a == c {
		t.Fatal("different pins must produce different IDs")
	}
}
