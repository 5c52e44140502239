package diag

// Severity classifies a backend failure.
type Severity uint8

const (
	// SevBug marks an upstream contract violation.
	SevBug Severity = iota + 1
	// SevTodo marks a construct that is recognised but not lowered.
	SevTodo
)

func (s Severity) String() string {
	switch s {
	case SevBug:
		return "BUG"
	case SevTodo:
		return "TODO"
	}
	return "UNKNOWN"
}
