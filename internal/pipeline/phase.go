package pipeline

import (
	"strconv"
	"strings"
)

// Phase selects which stages a run executes.
type Phase int

const (
	PhaseLoad Phase = iota + 1
	PhaseClean
	PhasePlot
	PhaseAll
	PhaseSmoke
)

var phaseNames = map[Phase]string{
	PhaseLoad:  "load",
	PhaseClean: "clean",
	PhasePlot:  "plot",
	PhaseAll:   "all",
	PhaseSmoke: "smoke",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "phase(" + strconv.Itoa(int(p)) + ")"
}

// ParsePhase accepts the numbered form (1, 2, 3) or a phase name.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "load":
		return PhaseLoad, nil
	case "2", "clean":
		return PhaseClean, nil
	case "3", "plot":
		return PhasePlot, nil
	case "all":
		return PhaseAll, nil
	case "smoke":
		return PhaseSmoke, nil
	default:
		return 0, &UnknownPhaseError{Name: s}
	}
}
