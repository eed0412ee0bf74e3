// Package ingestion runs the professor indexing pipeline.
//
// A Pipeline reads raw rows from one or more sources and, for every row:
//   - normalizes the fields and applies the tag policy
//   - builds the professor record and, when the row has review text, the review record
//   - composes the unit texts and derives their ids and metadata
//   - embeds the texts and queues the vectors for upsert
//
// Rows are processed in source order by a single goroutine. Rows that cannot
// be identified are skipped and reported; provider errors other than rate
// limiting abort the run; failed upsert batches are reported and the run goes
// on.
package ingestion
