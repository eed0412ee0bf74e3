// Package upsert writes embedded vectors to a vector store in batches.
//
// Vectors are grouped in submission order into batches of at most the
// configured size, 100 by default. Each batch is a single store call. When a
// call fails, the batch's ids and error are recorded in the Report and the
// remaining batches are still written; nothing is retried.
package upsert
