package document

import "errors"

var (
	// ErrEmptyDocument is returned when encoding produced zero bytes.
	// Retrying with the same report will not help.
	ErrEmptyDocument = errors.New("document generation produced no output")

	// ErrRenderFallback marks a failure of the visual path. Callers of
	// VisualPDF never see it unless the plain path failed too.
	ErrRenderFallback = errors.New("visual rendering failed")

	// ErrCaptureTargetMissing is returned by a Capturer when the named
	// render target does not exist.
	ErrCaptureTargetMissing = errors.New("capture target not found")

	ErrUnknownPageSize = errors.New("unknown page size")
	ErrUnknownFormat   = errors.New("unknown document format")
)
