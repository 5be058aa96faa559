package projection

import "errors"

var (
	// ErrUnknownSchema indicates a schema name that is not registered
	ErrUnknownSchema = errors.New("unknown projection schema")

	// ErrUnsupportedFormat indicates an output extension other than .csv or .xlsx
	ErrUnsupportedFormat = errors.New("unsupported output format")
)
