package filter

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/reposcout/cache"
	"github.com/s0up4200/reposcout/github"
)

// exprFilter implements Filter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = cache.NewLRU[*exprFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// WithClock overrides the time source used by the date helpers
func WithClock(now func() time.Time) ExprCompilerOption {
	return func(c *exprCompiler) {
		if now != nil {
			c.now = now
		}
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: make(map[string]any, 16),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Built-in helpers win over custom ones with the same name
	builtins := createHelperFunctions(c.now)
	maps.Copy(c.helperFuncs, builtins)

	return c
}

// exprCompiler implements CachingCompiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *cache.LRU[*exprFilter]
	now         func() time.Time
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
			Position:   -1,
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Type-check against a zero repository so unknown fields fail here
	program, err := expr.Compile(expression,
		expr.Env(createRuntimeEnvironment(c.helperFuncs, github.Repository{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, newCompilationError(expression, err)
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

func newCompilationError(expression string, err error) *CompilationError {
	ce := &CompilationError{
		Expression: expression,
		Reason:     "failed to compile expression",
		Position:   -1,
		Err:        err,
	}

	var fileErr *file.Error
	if errors.As(err, &fileErr) {
		ce.Reason = fileErr.Message
		ce.Position = fileErr.Column
	}
	return ce
}

// Match evaluates the filter against a repository. Evaluation errors count
// as no match.
func (f *exprFilter) Match(repo github.Repository) bool {
	ok, err := f.Eval(repo)
	return err == nil && ok
}

// Eval evaluates the filter against a repository
func (f *exprFilter) Eval(repo github.Repository) (bool, error) {
	result, err := expr.Run(f.program, createRuntimeEnvironment(f.helpers, repo))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			Repository: repo.FullName,
			Reason:     err.Error(),
			Err:        err,
		}
	}

	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// createHelperFunctions creates the repository independent helpers
func createHelperFunctions(now func() time.Time) map[string]any {
	return map[string]any{
		// Date helpers
		"daysSince": func(t time.Time) int {
			return int(now().Sub(t).Hours() / 24)
		},
		"daysAgo": func(days int) time.Time {
			return now().AddDate(0, 0, -days)
		},
		"monthsAgo": func(months int) time.Time {
			return now().AddDate(0, -months, 0)
		},
		"yearsAgo": func(years int) time.Time {
			return now().AddDate(-years, 0, 0)
		},
		"parseDate": func(dateStr string) time.Time {
			t, _ := time.Parse("2006-01-02", dateStr)
			return t
		},
		// String helpers, case-insensitive. contains, startsWith and endsWith
		// are expr operators, so the helpers carry a Fold suffix.
		"containsFold": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWithFold": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"endsWithFold": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"now":   now,
	}
}

// createRuntimeEnvironment creates the environment a filter runs against
func createRuntimeEnvironment(helpers map[string]any, repo github.Repository) map[string]any {
	env := make(map[string]any, len(helpers)+16)
	maps.Copy(env, helpers)

	env["Repo"] = repo
	env["hasTopic"] = createHasTopicFunc(repo.Topics)

	// Direct repository properties for convenience
	env["Name"] = repo.Name
	env["FullName"] = repo.FullName
	env["Owner"] = repo.Owner.Login
	env["Description"] = repo.GetDescription()
	env["Language"] = repo.GetLanguage()
	env["Stars"] = repo.StargazersCount
	env["Forks"] = repo.ForksCount
	env["Topics"] = repo.Topics
	env["Updated"] = repo.UpdatedAt
	env["URL"] = repo.HTMLURL

	license := ""
	if repo.License != nil {
		license = repo.License.Key
	}
	env["License"] = license

	return env
}

func createHasTopicFunc(topics []string) func(string) bool {
	lowerTopics := make([]string, len(topics))
	for i, topic := range topics {
		lowerTopics[i] = strings.ToLower(topic)
	}
	return func(topic string) bool {
		return slices.Contains(lowerTopics, strings.ToLower(topic))
	}
}
