// Package analytics derives study, habit and task statistics from snapshots
// of tracker records.
//
// Every query is a deterministic read-only fold over the collections passed
// in. The Engine holds nothing but its Clock, so one Engine may be shared by
// any number of goroutines. Calendar days are compared as YYYY-MM-DD strings,
// whose lexicographic order is chronological order.
package analytics
