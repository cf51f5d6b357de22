// Package recur computes recurrence-rule bounds for "this and future
// occurrences" edits: the original series is terminated just before a split
// instant, and the portion from the split onward becomes a conceptually new
// series materialized by the caller.
package recur
