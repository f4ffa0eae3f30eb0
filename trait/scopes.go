package trait

import "context"

// RunWithScopes nests providers around body in declaration order —
// outermost trait wraps the innermost, per spec.md §4.1:
//
//	run_with_scopes(providers, body):
//	  if providers is empty: return body()
//	  (p, rest) = providers
//	  return p.provide_scope(T, case, || run_with_scopes(rest, body))
//
// Unwinding happens in reverse automatically: each ProvideScope call is an
// ordinary (possibly deferred-cleanup) function call, so returning from
// the innermost one returns first through the provider that wraps it.
// A provider may return an error instead of calling body at all, or after
// calling it; in both cases that error simply propagates up through
// whichever outer providers are still on the stack, any of which may
// recover from it.
func RunWithScopes(ctx context.Context, test *TestDescriptor, tc *TestCase, providers []ScopeProvider, body func(context.Context) error) error {
	if len(providers) == 0 {
		return body(ctx)
	}
	p, rest := providers[0], providers[1:]
	return p.ProvideScope(ctx, test, tc, func(ctx context.Context) error {
		return RunWithScopes(ctx, test, tc, rest, body)
	})
}
