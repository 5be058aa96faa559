package curation

import "errors"

var (
	// ErrScoreColumnNotFound indicates the dataset has no column matching the score name.
	ErrScoreColumnNotFound = errors.New("score column not found")

	// ErrEmptyDataset indicates the dataset has a header but no data rows, or nothing at all.
	ErrEmptyDataset = errors.New("dataset has no data rows")

	// ErrUnsupportedFormat indicates a dataset file extension that cannot be read or written.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")

	// ErrNoSheets indicates a workbook without any worksheet.
	ErrNoSheets = errors.New("workbook has no sheets")
)
