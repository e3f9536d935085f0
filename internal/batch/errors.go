// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import "errors"

// Batch-level errors. ProcessDirectory returns them wrapped with the offending
// value, before any document is converted. Per-document failures are never
// returned this way; they are recorded in Result.Outcomes.
var (
	// ErrUnsupportedFormat reports an export format other than json or markdown.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrInvalidPattern reports a malformed glob.
	ErrInvalidPattern = errors.New("invalid file pattern")

	// ErrInputNotFound reports a missing or non-directory input path.
	ErrInputNotFound = errors.New("input directory not found")

	// ErrOutputUnavailable reports that the output directory could not be created.
	ErrOutputUnavailable = errors.New("output directory unavailable")
)
