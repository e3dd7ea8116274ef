// Package tasks runs batch operations against the concert API with real-time progress reporting.
//
// # Core Operations
//
// [ConcertEngine] offers three operations:
//
//  1. [ConcertEngine.BulkModerate] : accept or delete many concerts
//     - A bounded worker pool issues the requests
//     - A [rate.Limiter] paces job dispatch
//     - One failure does not stop the run; results are reported per concert
//
//  2. [ConcertEngine.CollectConcerts] : walk every page of the concert listing
//     - Optional accepted-only and owner filters
//     - Feeds the export command (see the formatter package)
//
//  3. [ConcertEngine.RetryDrafts] : resubmit concerts saved locally after a failed create
//     - Submitted drafts are deleted, failed ones record the latest error
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
