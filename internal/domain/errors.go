package domain

import "errors"

var (
	// Taxonomy errors
	ErrEmptyTaxonomy      = errors.New("taxonomy declares no statement lines")
	ErrDuplicateLine      = errors.New("taxonomy declares the same statement line twice")
	ErrUnknownFormulaTerm = errors.New("formula references an unknown statement line")
	ErrForwardReference   = errors.New("formula references a line declared after it")

	// Job errors
	ErrJobLocked     = errors.New("job is already running for this taxpayer and period")
	ErrStreamNotSorted = errors.New("entry stream is not sorted by (date, entry id)")
)
