// Package audit runs one complete validation batch over the atlas dataset.
//
// A run loads the reference collections and both record streams exactly once,
// validates every record in file order and partitions the results into
// Passed, Needs-Revision and Rejected. Cross-record checks that the pure
// validators cannot see, such as duplicate ids inside a collection, are
// applied here.
//
// A run never stops on bad input. Load failures become dataset.Problems on
// the Report; only Report.OK decides the outcome.
package audit
