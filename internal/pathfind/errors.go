package pathfind

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFeature is returned for temporary WMO obstacles.
	ErrUnsupportedFeature = errors.New("unsupported feature")
	// ErrDuplicateGameObject is returned when a GUID is already registered.
	ErrDuplicateGameObject = errors.New("game object already exists")
	// ErrNoHeightCandidate means neither geometry nor terrain exists where a
	// height was requested. Callers only ask where the mesh has a polygon, so
	// this indicates mismatched data.
	ErrNoHeightCandidate = errors.New("no height candidate")
)

// FormatError reports a map, region, index or model file that cannot be
// decoded.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("bad file format %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErrorf(path, format string, args ...any) error {
	return &FormatError{Path: path, Err: fmt.Errorf(format, args...)}
}

// DanglingReferenceError reports a reference to an instance, model or display
// id that the loaded data does not contain.
type DanglingReferenceError struct {
	Kind string // "wmo", "doodad", "model", "display"
	ID   uint32
	Key  string
	Err  error
}

func (e *DanglingReferenceError) Error() string {
	msg := "dangling " + e.Kind + " reference"
	if e.Key != "" {
		msg += fmt.Sprintf(" %q", e.Key)
	} else {
		msg += fmt.Sprintf(" %d", e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DanglingReferenceError) Unwrap() error { return e.Err }
