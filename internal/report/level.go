package report

// Level is the severity of a report, ordered from least to most severe.
type Level int

const (
	NoUpdates Level = iota
	CompatibleUpdate
	BreakingUpdate
	Failure
)

// Process exit codes for each level.
const (
	ExitNoUpdates        = 0
	ExitCompatibleUpdate = 1
	ExitBreakingUpdate   = 2
	ExitFailure          = 10
)

func (l Level) String() string {
	switch l {
	case NoUpdates:
		return "no updates"
	case CompatibleUpdate:
		return "compatible update"
	case BreakingUpdate:
		return "breaking update"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// ExitCode maps the level to the process exit code.
func (l Level) ExitCode() int {
	switch l {
	case CompatibleUpdate:
		return ExitCompatibleUpdate
	case BreakingUpdate:
		return ExitBreakingUpdate
	case Failure:
		return ExitFailure
	default:
		return ExitNoUpdates
	}
}

// Max returns the most severe of the given levels.
func Max(levels ...Level) Level {
	highest := NoUpdates
	for _, l := range levels {
		if l > highest {
			highest = l
		}
	}
	return highest
}
