// Package common defines shared constants and sentinel errors used across
// SeqSubmit components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Manifest / configuration errors. These are the only run-level fatal
	// conditions: they are detected before any worker starts.
	ErrManifestFormat = errors.New("unsupported manifest format")
	ErrManifestField  = errors.New("missing manifest field")
	ErrNoReadyEntries = errors.New("no entries ready for upload")

	// Transfer configuration errors.
	ErrUnknownTransferMode = errors.New("unknown transfer mode")

	// Token errors.
	ErrTokenMissing = errors.New("archive token missing")
	ErrTokenExpired = errors.New("archive token expired")
)
