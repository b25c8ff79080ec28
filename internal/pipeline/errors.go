package pipeline

import (
	"fmt"
	"io/fs"
	"strings"
)

// MissingFileError reports an input file a phase needs but cannot find.
type MissingFileError struct {
	Path string
	Hint string
}

func (e *MissingFileError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("file not found: %s", e.Path)
	}
	return fmt.Sprintf("file not found: %s (%s)", e.Path, e.Hint)
}

func (e *MissingFileError) Unwrap() error { return fs.ErrNotExist }

// SmokeError lists every post-load check that failed.
type SmokeError struct {
	Problems []string
}

func (e *SmokeError) Error() string {
	return "smoke test failed: " + strings.Join(e.Problems, "; ")
}

// UnknownPhaseError reports a phase name that is not one of 1, 2, 3, all, smoke.
type UnknownPhaseError struct {
	Name string
}

func (e *UnknownPhaseError) Error() string {
	return fmt.Sprintf("unknown phase %q (want 1, 2, 3, all or smoke)", e.Name)
}
