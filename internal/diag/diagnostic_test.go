package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"mirc/internal/source"
)

type named string

func (n named) String() string { return string(n) }

func TestErrorLocationChain(t *testing.T) {
	var err error = Bug(named("[u8]"), "raw slice value")
	err = At(err, "stmt 2")
	err = At(err, "bb1")
	err = At(err, "fn crate::f")
	err = WithSpan(err, source.Span{File: "lib.rs", Line: 4})

	got := err.Error()
	want := "BUG lib.rs:4 [fn crate::f bb1 stmt 2]: raw slice value - [u8]"
	if got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !IsBug(err) || IsTodo(err) {
		t.Fatalf("expected BUG classification for %v", err)
	}
}

func TestAtWrapsForeignErrors(t *testing.T) {
	base := errors.New("disk full")
	err := At(base, "unit core")
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to match base")
	}
	if !strings.HasPrefix(err.Error(), "unit core: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestTodoSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("unit main: %w", Todo(nil, "union definitions"))
	if !IsTodo(err) {
		t.Fatalf("expected TODO through fmt wrapping, got %v", err)
	}
}
