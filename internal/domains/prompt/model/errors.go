package model

import "errors"

var (
	// Whole-file ingestion errors. Reported once, before any row exists.
	ErrFileTooLarge      = errors.New("file exceeds the size limit")
	ErrUnsupportedFormat = errors.New("file format must be csv or json")
	ErrEmptyFile         = errors.New("file contains no data rows")
	ErrTooManyRows       = errors.New("file exceeds the row limit")

	// Batch operation errors.
	ErrRowNotFound     = errors.New("row not found in batch")
	ErrNothingToDo     = errors.New("no publishable rows")
	ErrSessionRequired = errors.New("session id is required")
)
