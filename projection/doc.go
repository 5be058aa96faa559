// Package projection flattens record log entries into rows with a fixed column
// order. Projection is lenient: whatever a record lacks becomes an empty cell, so
// parse_error records still produce full-width rows.
package projection
