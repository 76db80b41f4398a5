package epub

import "errors"

// Sentinel errors returned by the archive extraction pipeline.
var (
	// ErrContainerMissing indicates the well-known container descriptor
	// (META-INF/container.xml) is absent. Not fatal: callers fall back to
	// scanning the archive's file table directly.
	ErrContainerMissing = errors.New("epub: container descriptor not found")

	// ErrContainerMalformed indicates the container descriptor exists but
	// declares no usable rootfile path.
	ErrContainerMalformed = errors.New("epub: container descriptor has no rootfile path")

	// ErrManifestUnreadable indicates the manifest file named by the
	// container descriptor is absent or cannot be parsed.
	ErrManifestUnreadable = errors.New("epub: manifest not readable")

	// ErrNoReadableContent indicates both the manifest and the fallback
	// scan yielded zero usable chapters. This is the only archive-pipeline
	// error surfaced to the caller as user-visible.
	ErrNoReadableContent = errors.New("epub: no readable content in archive")
)
