package lattice

// Names of the built-in nullness qualifiers.
const (
	NameNullable       = "Nullable"
	NameNonNull        = "NonNull"
	NameNullnessBottom = "NullnessBottom"
)

// NullnessDecls declares the nullness chain NullnessBottom <: NonNull <: Nullable.
func NullnessDecls() []Decl {
	return []Decl{
		{Name: NameNullable},
		{Name: NameNonNull, SubtypeOf: []string{NameNullable}},
		{Name: NameNullnessBottom, SubtypeOf: []string{NameNonNull}},
	}
}

// Nullness returns a fresh built-in nullness lattice.
func Nullness() *Finite {
	return MustBuild(NullnessDecls())
}
