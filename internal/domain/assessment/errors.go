package assessment

import "errors"

var (
	ErrNotDraft          = errors.New("assessment is no longer a draft")
	ErrNotSubmitted      = errors.New("assessment must be submitted before review")
	ErrMissingName       = errors.New("employee full name is required before submitting")
	ErrMissingFinalGrade = errors.New("an overall manager rating is required before finalizing")
	ErrReviewed          = errors.New("assessment has been reviewed and is read-only")
	ErrInvalidRating     = errors.New("rating is not one of the allowed labels")
)
