// Package gofront translates type checked Go function declarations into method IR.
//
// Besides the IR it records use sites the outer checker verifies against refined
// qualifiers: dereferences of possibly nil values and writes into annotated fields.
//
// Constructs the IR cannot express are kept as opaque values: globals, closures,
// channel receives. Closure bodies are not translated.
package gofront
