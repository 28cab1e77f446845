// Package report collects findings of an analysis pass. Collectors are safe for
// concurrent use, so methods analyzed in parallel report into a single one.
package report
