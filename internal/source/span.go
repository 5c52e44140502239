package source

import "fmt"

// Span locates an item in the source that upstream phases lowered it from.
// Line and Col are 1-based; a zero Line means the location is unknown.
type Span struct {
	File string
	Line uint32
	Col  uint32
}

// Known reports whether the span carries a usable location.
func (s Span) Known() bool {
	return s.File != "" || s.Line != 0
}

func (s Span) String() string {
	if !s.Known() {
		return "<unknown>"
	}
	file := s.File
	if file == "" {
		file = "<input>"
	}
	if s.Col == 0 {
		return fmt.Sprintf("%s:%d", file, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", file, s.Line, s.Col)
}
