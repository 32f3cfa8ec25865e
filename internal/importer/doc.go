// Package importer implements the bulk import and reconciliation pipeline
// for the seller directory.
//
// An uploaded file (CSV, XLSX, or JSON) flows through decode, header
// mapping, normalization, validation, and scoring to produce a preview
// artifact. After the caller confirms, the matcher reconciles each record
// against the existing corpus and the executor applies the resulting
// create/update/skip decisions with partial-failure semantics, streaming
// progress events along the way.
//
// The pipeline depends on the CorpusIndex/CorpusStore interfaces defined
// in repository.go. It never imports net/http or database/sql directly.
package importer
