package model

import "fmt"

// ValidationError reports a malformed input file: missing required columns or
// unparsable cell values. It carries enough detail for the caller to tell the
// user what the expected schema looks like.
type ValidationError struct {
	Msg     string
	Missing []string // required column names absent from the header, if any
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("invalid input: %s (missing columns: %v)", e.Msg, e.Missing)
	}
	return fmt.Sprintf("invalid input: %s", e.Msg)
}

// ProcessingError wraps a failure inside a pipeline stage. The run is
// terminal once one is returned; no partial results are surfaced.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing failed in stage %q: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// IOError wraps a file read or write failure on an input, temporary, or
// output path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
