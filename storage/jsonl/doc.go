// Package jsonl implements newline-delimited JSON streams: the append-only record
// log used as the resume checkpoint, and document streams produced by extraction.
//
// Readers tolerate damage. A malformed line, including a partially written last
// line left by a crash, is skipped and counted rather than failing the read.
package jsonl
