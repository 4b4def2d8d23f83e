package kgqa

import "errors"

var (
	// ErrGraphNotFound is returned when a graph ID does not exist.
	ErrGraphNotFound = errors.New("kgqa: graph not found")

	// ErrNoTexts is returned when ingestion is given no usable text.
	ErrNoTexts = errors.New("kgqa: no texts provided")

	// ErrUnsupportedFormat is returned for unrecognized file formats.
	ErrUnsupportedFormat = errors.New("kgqa: unsupported document format")

	// ErrStoreClosed is returned when operating on a closed engine.
	ErrStoreClosed = errors.New("kgqa: store is closed")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("kgqa: invalid configuration")
)
