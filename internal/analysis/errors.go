package analysis

import (
	"fmt"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
)

// ErrAnalysisCanceled is returned when a run is stopped between files.
var ErrAnalysisCanceled = errors.NewStd("analysis canceled")

// Stage is a state of the per-file pipeline:
//
//	discovered → identity-parsed → filtered → layout-detected → frame-indexed → matched → annotated → saved
type Stage string

const (
	StageDiscovered     Stage = "discovered"
	StageIdentityParsed Stage = "identity-parsed"
	StageFiltered       Stage = "filtered"
	StageLayoutDetected Stage = "layout-detected"
	StageFrameIndexed   Stage = "frame-indexed"
	StageMatched        Stage = "matched"
	StageAnnotated      Stage = "annotated"
	StageSaved          Stage = "saved"
)

// SkipError ends the processing of one capture file without affecting the rest of
// the batch. Stage is the state the file failed to reach.
type SkipError struct {
	Stage  Stage
	Reason string
	Err    error
}

func (e *SkipError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("skipped before %s: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("skipped before %s: %s", e.Stage, e.Reason)
}

func (e *SkipError) Unwrap() error {
	return e.Err
}

// ErrorCategory maps the skip to the error taxonomy.
func (e *SkipError) ErrorCategory() errors.ErrorCategory {
	switch e.Stage {
	case StageIdentityParsed, StageFiltered:
		return errors.CategoryIdentity
	case StageLayoutDetected:
		if errors.IsCategory(e.Err, errors.CategoryFileParsing) || errors.IsCategory(e.Err, errors.CategoryFileIO) {
			return errors.CategoryFileIO
		}
		return errors.CategoryLayout
	case StageFrameIndexed:
		if errors.IsCategory(e.Err, errors.CategoryAnchor) {
			return errors.CategoryAnchor
		}
		return errors.CategoryFrames
	default:
		return errors.CategoryGeneric
	}
}

// IsSkip reports whether err is a per-file skip.
func IsSkip(err error) bool {
	var se *SkipError
	return errors.As(err, &se)
}

func skip(stage Stage, reason string, err error) *SkipError {
	return &SkipError{Stage: stage, Reason: reason, Err: err}
}
