package resolver

// ResolverBuilderOption is a functional option for configuring a Resolver via NewResolver.
type ResolverBuilderOption func(*resolver)

// WithChildren sets whether node children are resolved recursively. Enabled by default.
//
// Parameters:
//   - enabled: true to resolve children, false to resolve only the scene's root nodes
//
// Returns:
//   - ResolverBuilderOption: a function that applies the option to a resolver
func WithChildren(enabled bool) ResolverBuilderOption {
	return func(r *resolver) {
		r.children = enabled
	}
}

// WithMorphTargets sets whether primitive morph targets are resolved into accessors. Enabled by default.
//
// Parameters:
//   - enabled: true to resolve morph targets, false to leave Primitive.Targets empty
//
// Returns:
//   - ResolverBuilderOption: a function that applies the option to a resolver
func WithMorphTargets(enabled bool) ResolverBuilderOption {
	return func(r *resolver) {
		r.targets = enabled
	}
}
