package lattice

// maxQualifiers bounds hierarchy size. Construction is cubic in it.
const maxQualifiers = 512

// Decl declares a qualifier and its direct supertypes.
type Decl struct {
	Name      string
	SubtypeOf []string
}

// Finite is a lattice given by an explicit subtype relation with precomputed
// join and meet tables. It is immutable once built.
type Finite struct {
	names  []string
	index  map[string]Qualifier
	sub    [][]bool
	lub    [][]Qualifier
	glb    [][]Qualifier
	top    Qualifier
	bottom Qualifier
}

var _ Lattice = (*Finite)(nil)

// Build constructs a lattice from qualifier declarations. Qualifiers get identifiers
// in declaration order.
func Build(decls []Decl) (*Finite, error) {
	if len(decls) == 0 {
		return nil, errorf(AxiomDeclaration, nil, "no qualifiers declared")
	}
	if len(decls) > maxQualifiers {
		return nil, errorf(AxiomDeclaration, nil, "too many qualifiers: %d > %d", len(decls), maxQualifiers)
	}

	n := len(decls)
	l := &Finite{
		names: make([]string, n),
		index: make(map[string]Qualifier, n),
	}
	for i, d := range decls {
		if d.Name == "" {
			return nil, errorf(AxiomDeclaration, nil, "qualifier #%d has no name", i)
		}
		if _, ok := l.index[d.Name]; ok {
			return nil, errorf(AxiomDeclaration, []string{d.Name}, "duplicate qualifier")
		}
		l.names[i] = d.Name
		l.index[d.Name] = Qualifier(i + 1)
	}

	l.sub = make([][]bool, n)
	for i := range l.sub {
		l.sub[i] = make([]bool, n)
		l.sub[i][i] = true
	}
	for i, d := range decls {
		for _, super := range d.SubtypeOf {
			j, ok := l.index[super]
			if !ok {
				return nil, errorf(AxiomDeclaration, []string{d.Name, super}, "unknown supertype %q", super)
			}
			l.sub[i][j-1] = true
		}
	}

	// Transitive closure.
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if !l.sub[i][k] {
				continue
			}
			for j := 0; j < n; j++ {
				if l.sub[k][j] {
					l.sub[i][j] = true
				}
			}
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if l.sub[i][j] && l.sub[j][i] {
				return nil, errorf(AxiomAntisymmetry, []string{l.names[i], l.names[j]}, "subtype cycle")
			}
		}
	}

	var err *Error
	if l.top, err = l.findBound(true); err != nil {
		return nil, err
	}
	if l.bottom, err = l.findBound(false); err != nil {
		return nil, err
	}

	l.lub = make([][]Qualifier, n)
	l.glb = make([][]Qualifier, n)
	for i := 0; i < n; i++ {
		l.lub[i] = make([]Qualifier, n)
		l.glb[i] = make([]Qualifier, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			up, err := l.extremeBound(i, j, true)
			if err != nil {
				return nil, err
			}
			down, err := l.extremeBound(i, j, false)
			if err != nil {
				return nil, err
			}
			l.lub[i][j], l.lub[j][i] = up, up
			l.glb[i][j], l.glb[j][i] = down, down
		}
	}

	return l, nil
}

// MustBuild is like [Build] but panics on error. Use it for built-in hierarchies only.
func MustBuild(decls []Decl) *Finite {
	l, err := Build(decls)
	if err != nil {
		panic(err)
	}

	return l
}

func (l *Finite) findBound(top bool) (Qualifier, *Error) {
	var found []int
	for c := range l.names {
		ok := true
		for x := range l.names {
			if top && !l.sub[x][c] || !top && !l.sub[c][x] {
				ok = false
				break
			}
		}
		if ok {
			found = append(found, c)
		}
	}

	what := "bottom"
	if top {
		what = "top"
	}
	switch len(found) {
	case 1:
		return Qualifier(found[0] + 1), nil
	case 0:
		return Invalid, errorf(AxiomBounds, nil, "no %s qualifier", what)
	default:
		return Invalid, errorf(AxiomBounds, l.namesOf(found), "ambiguous %s", what)
	}
}

// extremeBound computes the least upper (up) or greatest lower bound of i and j.
func (l *Finite) extremeBound(i, j int, up bool) (Qualifier, *Error) {
	var bounds []int
	for c := range l.names {
		if up && l.sub[i][c] && l.sub[j][c] || !up && l.sub[c][i] && l.sub[c][j] {
			bounds = append(bounds, c)
		}
	}

	for _, c := range bounds {
		best := true
		for _, d := range bounds {
			if up && !l.sub[c][d] || !up && !l.sub[d][c] {
				best = false
				break
			}
		}
		if best {
			return Qualifier(c + 1), nil
		}
	}

	if up {
		return Invalid, errorf(AxiomJoin, []string{l.names[i], l.names[j]}, "no least upper bound among %v", l.namesOf(bounds))
	}
	return Invalid, errorf(AxiomMeet, []string{l.names[i], l.names[j]}, "no greatest lower bound among %v", l.namesOf(bounds))
}

func (l *Finite) namesOf(idx []int) []string {
	res := make([]string, len(idx))
	for i, v := range idx {
		res[i] = l.names[v]
	}

	return res
}

// Top implements [Lattice].
func (l *Finite) Top() Qualifier { return l.top }

// Bottom implements [Lattice].
func (l *Finite) Bottom() Qualifier { return l.bottom }

// IsSubtype implements [Lattice]. Invalid qualifiers are never subtypes of anything.
func (l *Finite) IsSubtype(a, b Qualifier) bool {
	if !l.has(a) || !l.has(b) {
		return false
	}

	return l.sub[a-1][b-1]
}

// LUB implements [Lattice]. An invalid argument yields the other one.
func (l *Finite) LUB(a, b Qualifier) Qualifier {
	switch {
	case !l.has(a):
		return b
	case !l.has(b):
		return a
	}

	return l.lub[a-1][b-1]
}

// GLB implements [Lattice]. An invalid argument yields the other one.
func (l *Finite) GLB(a, b Qualifier) Qualifier {
	switch {
	case !l.has(a):
		return b
	case !l.has(b):
		return a
	}

	return l.glb[a-1][b-1]
}

// Qualifiers implements [Lattice].
func (l *Finite) Qualifiers() []Qualifier {
	res := make([]Qualifier, len(l.names))
	for i := range l.names {
		res[i] = Qualifier(i + 1)
	}

	return res
}

// Name implements [Lattice].
func (l *Finite) Name(q Qualifier) string {
	if !l.has(q) {
		return Format(nil, q)
	}

	return l.names[q-1]
}

// Lookup implements [Lattice].
func (l *Finite) Lookup(name string) (Qualifier, bool) {
	q, ok := l.index[name]
	return q, ok
}

func (l *Finite) has(q Qualifier) bool {
	return q.Valid() && int(q) <= len(l.names)
}
