// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error kinds reported by the explain pipeline. Concrete errors wrap one of
// these so callers can classify a failure with errors.Is.
var (
	// ErrConfiguration marks a missing or unreadable credential source.
	ErrConfiguration = errors.New("configuration error")

	// ErrParse marks a credential file that is not valid structured data
	// or lacks the expected key.
	ErrParse = errors.New("parse error")

	// ErrGeneration marks a failed explanation request.
	ErrGeneration = errors.New("generation error")

	// ErrIllustration marks a failed image request, fetch, or decode.
	ErrIllustration = errors.New("illustration error")
)
