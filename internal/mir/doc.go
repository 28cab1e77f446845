// Package mir defines the method IR the refinement engine consumes.
//
// A method body is a tree of statements and expressions of a structured,
// object-oriented language with exceptions. Front ends (see gofront) translate
// source into this vocabulary; the CFG builder lowers it into basic blocks.
//
// The package also defines the trackable-expression normal form ([Path]) that
// keys refinement stores, and [Reference], the identity of a callee.
package mir
