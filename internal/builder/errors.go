package builder

import "errors"

var (
	// ErrUnknownType is returned for a type tag outside the registry.
	ErrUnknownType = errors.New("unknown question type")
	// ErrStaleReference marks an id or index that no longer exists, typically a UI event
	// racing a delete. Callers treat it as a no-op.
	ErrStaleReference = errors.New("stale question reference")
	// ErrPermutationMismatch is returned when a reorder does not cover exactly the current ids.
	ErrPermutationMismatch = errors.New("permutation does not match question list")
	ErrNoSelection         = errors.New("no question selected")
	ErrUnsupportedEdit     = errors.New("unsupported edit")
)

// Validation codes reported to the user.
const (
	CodeMinChoices       = "min_choices"
	CodeInvalidMaxRating = "invalid_max_rating"
	CodeInvalidRange     = "invalid_range"
	CodeInvalidNumber    = "invalid_number"
	CodeTitleRequired    = "title_required"
)

// ValidationError is a user-facing rejection. The model is never left in the rejected state.
type ValidationError struct {
	Code    string
	Message LocalizedText
}

func (e *ValidationError) Error() string { return e.Code + ": " + e.Message.Text }

func newValidationError(code string, msg LocalizedText) *ValidationError {
	return &ValidationError{Code: code, Message: msg}
}

// AsValidationError unwraps a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsRecoverable reports whether err is a structural no-op rather than a failure.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrStaleReference) || errors.Is(err, ErrPermutationMismatch) || errors.Is(err, ErrNoSelection)
}
