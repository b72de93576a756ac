package filter

import (
	"github.com/s0up4200/reposcout/github"
)

// Filter defines the basic interface for repository filters
type Filter interface {
	// Match checks if a repository matches the filter criteria
	Match(repo github.Repository) bool

	// Eval is Match with the evaluation error exposed
	Eval(repo github.Repository) (bool, error)

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (Filter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}
