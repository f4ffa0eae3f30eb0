package trait

// EffectiveTraits concatenates the recursive suite traits inherited from
// ancestors with test's own declared traits, in that order, per spec.md
// §4.1: "effective trait list Ts (computed by concatenating recursive
// suite traits from ancestors with T.traits)". Callers (plan.PlanRunner)
// walk the descriptor tree top-down and pass down only the ancestor
// traits that are both suite traits and recursive.
func EffectiveTraits(inheritedRecursive []Trait, own []Trait) []Trait {
	out := make([]Trait, 0, len(inheritedRecursive)+len(own))
	out = append(out, inheritedRecursive...)
	out = append(out, own...)
	return out
}

// RecursiveSuiteTraits filters ts down to the suite traits that are
// recursive, i.e. the ones a child descriptor should inherit as part of
// its own EffectiveTraits computation.
func RecursiveSuiteTraits(ts []Trait) []Trait {
	var out []Trait
	for _, t := range ts {
		if t.IsSuiteTrait() && t.IsRecursive() {
			out = append(out, t)
		}
	}
	return out
}

// Providers computes the ordered list of scope providers for test (and,
// if non-nil, a specific TestCase), per spec.md §4.1's algorithm:
//
//	providers(T, case) =
//	  filter_map(trait in Ts):
//	    if case is None:
//	      if T.is_suite and trait.is_suite_trait and trait.is_recursive: None
//	      else: trait.scope_provider(T, None)
//	    else:
//	      trait.scope_provider(T, case)
//
// A recursive suite trait provides its custom scope once per contained
// function rather than once for the whole suite, so it is skipped here at
// suite granularity (tc == nil) and picked up again when Providers is
// called for each contained test with its own effective trait list.
func Providers(test *TestDescriptor, tc *TestCase, effective []Trait) []ScopeProvider {
	var out []ScopeProvider
	for _, t := range effective {
		if !t.HasScopeProvider() {
			continue
		}
		if tc == nil && test.IsSuite && t.IsSuiteTrait() && t.IsRecursive() {
			continue
		}
		if sp := t.ScopeProviderFor(test, tc); sp != nil {
			out = append(out, sp)
		}
	}
	return out
}
