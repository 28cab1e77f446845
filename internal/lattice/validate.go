package lattice

// sampleLimit caps the number of qualifiers the cubic checks run over.
const sampleLimit = 48

// Validate checks the lattice laws the engine relies upon. Hierarchies bigger than
// the sample limit are checked on a deterministic sample that always includes
// top and bottom.
func Validate(l Lattice) error {
	if l == nil {
		return errorf(AxiomDeclaration, nil, "no lattice")
	}

	top, bot := l.Top(), l.Bottom()
	all := l.Qualifiers()
	if !contains(all, top) || !contains(all, bot) {
		return errorf(AxiomBounds, nil, "top or bottom is not listed among qualifiers")
	}

	qs := sample(all, top, bot)
	name := func(qs ...Qualifier) []string {
		res := make([]string, len(qs))
		for i, q := range qs {
			res[i] = l.Name(q)
		}
		return res
	}

	for _, a := range qs {
		if !l.IsSubtype(a, a) {
			return errorf(AxiomReflexivity, name(a), "not a subtype of itself")
		}
		if !l.IsSubtype(a, top) || !l.IsSubtype(bot, a) {
			return errorf(AxiomBounds, name(a, top, bot), "not between bottom and top")
		}
		if l.LUB(a, a) != a || l.GLB(a, a) != a {
			return errorf(AxiomAlgebra, name(a), "join or meet is not idempotent")
		}
	}

	for _, a := range qs {
		for _, b := range qs {
			if a != b && l.IsSubtype(a, b) && l.IsSubtype(b, a) {
				return errorf(AxiomAntisymmetry, name(a, b), "mutual subtypes")
			}

			j, m := l.LUB(a, b), l.GLB(a, b)
			if j != l.LUB(b, a) || m != l.GLB(b, a) {
				return errorf(AxiomAlgebra, name(a, b), "join or meet is not commutative")
			}
			if !l.IsSubtype(a, j) || !l.IsSubtype(b, j) {
				return errorf(AxiomJoin, name(a, b, j), "join is not an upper bound")
			}
			if !l.IsSubtype(m, a) || !l.IsSubtype(m, b) {
				return errorf(AxiomMeet, name(a, b, m), "meet is not a lower bound")
			}
			if l.LUB(a, m) != a || l.GLB(a, j) != a {
				return errorf(AxiomAlgebra, name(a, b), "absorption does not hold")
			}

			for _, c := range qs {
				if l.IsSubtype(a, c) && l.IsSubtype(b, c) && !l.IsSubtype(j, c) {
					return errorf(AxiomJoin, name(a, b, c), "join is not the least upper bound")
				}
				if l.IsSubtype(c, a) && l.IsSubtype(c, b) && !l.IsSubtype(c, m) {
					return errorf(AxiomMeet, name(a, b, c), "meet is not the greatest lower bound")
				}
				if l.IsSubtype(a, b) && l.IsSubtype(b, c) && !l.IsSubtype(a, c) {
					return errorf(AxiomTransitivity, name(a, b, c), "subtyping is not transitive")
				}
				if l.LUB(l.LUB(a, b), c) != l.LUB(a, l.LUB(b, c)) {
					return errorf(AxiomAlgebra, name(a, b, c), "join is not associative")
				}
				if l.IsSubtype(a, b) && !l.IsSubtype(l.LUB(a, c), l.LUB(b, c)) {
					return errorf(AxiomMonotonicity, name(a, b, c), "join is not monotonic")
				}
			}
		}
	}

	return nil
}

func sample(all []Qualifier, top, bot Qualifier) []Qualifier {
	if len(all) <= sampleLimit {
		return all
	}

	res := []Qualifier{top, bot}
	step := len(all) / (sampleLimit - 2)
	for i := 0; i < len(all) && len(res) < sampleLimit; i += step {
		if all[i] != top && all[i] != bot {
			res = append(res, all[i])
		}
	}

	return res
}

func contains(qs []Qualifier, q Qualifier) bool {
	for _, v := range qs {
		if v == q {
			return true
		}
	}

	return false
}
