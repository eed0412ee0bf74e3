// Package source turns the supported inputs into raw rows.
//
// Three inputs are supported: CSV files in the layout of the scraped rating
// dataset, pre-scraped JSON documents and professor rating pages (fetched
// over HTTP or read from disk). Every source only produces core.RawRow
// values; normalization and record building happen downstream and are shared
// by all of them.
package source
