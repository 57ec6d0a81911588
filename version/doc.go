// Package version turns raw repository metadata into a version string of the
// form
//
//	<major>.<minor>.<patch>-<distance>.<commitId>[+<timestamp>]
//
// Resolve is the pure formatting step. Resolver wires a metadata.Source and an
// optional Cache around it:
//
//	resolver := version.NewResolver(open, version.Options{IncludeTimestamp: true},
//	    version.WithCache(store))
//	v, err := resolver.Resolve(ctx, "/path/to/repo")
//	fmt.Println(v)
//
// A tag that is not a plain major.minor.patch version (an optional leading v
// is accepted) fails with VERSION_PARSE_ERROR and nothing is rendered.
package version
