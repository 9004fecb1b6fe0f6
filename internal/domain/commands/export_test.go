package commands

// Annotate exports annotate for testing.
var Annotate = annotate //nolint:gochecknoglobals // test export

// RewriteURLs exports rewriteURLs for testing.
var RewriteURLs = rewriteURLs //nolint:gochecknoglobals // test export

// DependencyDirs exports dependencyDirs for testing.
var DependencyDirs = dependencyDirs //nolint:gochecknoglobals // test export

// ExcludeMatcher exports excludeMatcher for testing.
var ExcludeMatcher = excludeMatcher //nolint:gochecknoglobals // test export
