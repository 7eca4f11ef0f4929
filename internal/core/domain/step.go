package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// ActionRef identifies a reusable action together with its version pin,
// e.g. "checkout@v4" -> {Name: "checkout", Pin: "v4"}.
type ActionRef struct {
	Name string
	Pin  string
}

// ParseActionRef parses a "name@pin" reference. A reference without a pin
// is rejected so every action invocation stays reproducible.
func ParseActionRef(ref string) (ActionRef, error) {
	name, pin, ok := strings.Cut(ref, "@")
	if !ok || pin == "" {
		return ActionRef{}, zerr.With(ErrUnpinnedAction, "ref", ref)
	}
	if name == "" {
		return ActionRef{}, zerr.With(ErrUnknownAction, "ref", ref)
	}
	return ActionRef{Name: name, Pin: pin}, nil
}

// IsZero reports whether the reference is unset.
func (r ActionRef) IsZero() bool {
	return r.Name == "" && r.Pin == ""
}

// String returns the canonical "name@pin" form.
func (r ActionRef) String() string {
	return r.Name + "@" + r.Pin
}

// Step is a single entry in a job's ordered step list. It either invokes a
// reusable action (Uses) or runs a literal shell command (Run), never both.
type Step struct {
	Name       InternedString
	Uses       ActionRef
	With       map[string]string
	Run        string
	Env        map[string]string
	WorkingDir string
}

// IsAction reports whether the step invokes a reusable action.
func (s *Step) IsAction() bool {
	return !s.Uses.IsZero()
}

// Validate checks the uses/run exclusivity invariant.
func (s *Step) Validate() error {
	if s.IsAction() == (s.Run != "") {
		return zerr.With(ErrStepConflict, "step", s.Name.String())
	}
	return nil
}
