// Package postgres implements storage.RowSink on PostgreSQL with the pgvector extension.
//
// Rows land in a table shaped (doc_id, chunk_index, content, embedding, created_at).
// A whole import runs in one transaction, sent to the server in pipelined batches.
package postgres
