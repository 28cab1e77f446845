// Package config reads base type system profiles: the qualifier hierarchy, qualifiers
// of unrefined values and the facts known about conditions and called functions.
package config
