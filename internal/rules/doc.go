// Package rules defines the canonical rule codes (QF-series) reported by qualflow.
//
// Each rule is a distinct kind of finding with a stable numeric and textual identity,
// so that diagnostics can be filtered and traced across analysis passes and logs.
//
// Rule numbering scheme:
//
//	000–009  Analysis failures
//	010–019  Use sites requiring a refined qualifier
//	020–029  Stores into declared locations
package rules
