package filter

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/s0up4200/reposcout/github"
)

func strPtr(s string) *string { return &s }

// generateTestRepositories creates test repository data
func generateTestRepositories(count int) []github.Repository {
	languages := []string{"Go", "Rust", "TypeScript"}
	topics := []string{"cli", "web", "database"}

	repos := make([]github.Repository, count)
	for i := 0; i < count; i++ {
		repos[i] = github.Repository{
			ID:              int64(i),
			Name:            fmt.Sprintf("repo%d", i),
			FullName:        fmt.Sprintf("owner%d/repo%d", i%4, i),
			Owner:           github.Owner{Login: fmt.Sprintf("owner%d", i%4)},
			Language:        strPtr(languages[i%3]),
			StargazersCount: i * 10,
			ForksCount:      i,
			UpdatedAt:       time.Now().AddDate(0, 0, -i),
			Topics:          topics[:(i%3)+1],
		}
	}
	return repos
}

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `hasTopic("cli")`,
			wantErr:    false,
		},
		{
			name:        "empty expression",
			expression:  "  ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `hasTopic("unclosed`,
			wantErr:    true,
		},
		{
			name:       "unknown field",
			expression: `Watchers > 10`,
			wantErr:    true,
		},
		{
			name:       "non boolean result",
			expression: `Stars + 1`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `hasTopic("cli") and Stars > 100 and Language == "Go"`,
			wantErr:    false,
		},
		{
			name:       "qualifier syntax",
			expression: `language:go stars:>100`,
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := CompileFilter(tt.expression)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error but got none")
				}
				var ce *CompilationError
				if !errors.As(err, &ce) {
					t.Errorf("expected *CompilationError, got %T", err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if filter == nil {
				t.Fatalf("expected filter but got nil")
			}
		})
	}
}

func TestCompilationErrorPosition(t *testing.T) {
	_, err := NewExprCompiler().Compile(`Stars > `)
	var ce *CompilationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompilationError, got %v", err)
	}
	if ce.Position < 0 {
		t.Errorf("expected a position, got %d", ce.Position)
	}
	if ce.Unwrap() == nil {
		t.Error("expected wrapped expr error")
	}
}

func TestFilterEvaluation(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	compiler := NewExprCompiler(WithClock(func() time.Time { return now }))

	repo := github.Repository{
		ID:              1,
		Name:            "cobra",
		FullName:        "spf13/cobra",
		Description:     strPtr("A Commander for modern Go CLI interactions"),
		Owner:           github.Owner{Login: "spf13"},
		Language:        strPtr("Go"),
		StargazersCount: 38000,
		ForksCount:      2800,
		UpdatedAt:       now.AddDate(0, 0, -3),
		License:         &github.License{Key: "apache-2.0", Name: "Apache License 2.0"},
		Topics:          []string{"CLI", "golang"},
	}

	bare := github.Repository{ID: 2, Name: "empty", FullName: "someone/empty", Owner: github.Owner{Login: "someone"}}

	tests := []struct {
		name       string
		expression string
		repo       github.Repository
		expected   bool
	}{
		{name: "has topic ignores case", expression: `hasTopic("cli")`, repo: repo, expected: true},
		{name: "does not have topic", expression: `hasTopic("rust")`, repo: repo, expected: false},
		{name: "stars comparison", expression: `Stars > 1000`, repo: repo, expected: true},
		{name: "forks comparison", expression: `Forks < 100`, repo: repo, expected: false},
		{name: "language", expression: `Language == "Go"`, repo: repo, expected: true},
		{name: "owner", expression: `Owner == "spf13"`, repo: repo, expected: true},
		{name: "license key", expression: `License == "apache-2.0"`, repo: repo, expected: true},
		{name: "description contains ignoring case", expression: `containsFold(Description, "COMMANDER")`, repo: repo, expected: true},
		{name: "description contains operator", expression: `Description contains "Commander"`, repo: repo, expected: true},
		{name: "name prefix ignoring case", expression: `startsWithFold(Name, "COB")`, repo: repo, expected: true},
		{name: "name suffix ignoring case", expression: `endsWithFold(FullName, "/COBRA")`, repo: repo, expected: true},
		{name: "name suffix mismatch", expression: `endsWithFold(FullName, "viper")`, repo: repo, expected: false},
		{name: "recently updated", expression: `Updated > daysAgo(7)`, repo: repo, expected: true},
		{name: "days since update", expression: `daysSince(Updated) == 3`, repo: repo, expected: true},
		{name: "nested access", expression: `Repo.Owner.Login == "spf13"`, repo: repo, expected: true},
		{name: "nil language", expression: `Language == ""`, repo: bare, expected: true},
		{name: "nil license", expression: `License == ""`, repo: bare, expected: true},
		{name: "no topics", expression: `len(Topics) == 0`, repo: bare, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)
			if err != nil {
				t.Fatalf("failed to compile filter: %v", err)
			}

			if result := filter.Match(tt.repo); result != tt.expected {
				t.Errorf("expected %v but got %v for expression %q", tt.expected, result, tt.expression)
			}
		})
	}
}

func TestEvalRuntimeError(t *testing.T) {
	filter, err := NewExprCompiler().Compile(`Topics[5] == "cli"`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	repo := github.Repository{FullName: "a/b", Topics: []string{"cli"}}
	ok, err := filter.Eval(repo)
	if err == nil {
		t.Fatal("expected evaluation error")
	}
	var ee *EvaluationError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *EvaluationError, got %T", err)
	}
	if ee.Repository != "a/b" {
		t.Errorf("expected repository a/b, got %q", ee.Repository)
	}
	if ok || filter.Match(repo) {
		t.Error("failed evaluation must not match")
	}
}

func TestApply(t *testing.T) {
	repos := generateTestRepositories(30)

	filter, err := CompileFilter(`Language == "Go" and Stars >= 100`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	matches := Apply(filter, repos)

	var expected []int64
	for _, r := range repos {
		if r.GetLanguage() == "Go" && r.StargazersCount >= 100 {
			expected = append(expected, r.ID)
		}
	}

	if len(matches) != len(expected) {
		t.Fatalf("expected %d matches but got %d", len(expected), len(matches))
	}
	for i, m := range matches {
		if m.ID != expected[i] {
			t.Errorf("match %d: expected id %d, got %d", i, expected[i], m.ID)
		}
	}
}

func TestApplyPage(t *testing.T) {
	page := &github.SearchResultPage{TotalCount: 5000, Items: generateTestRepositories(9)}

	filter, err := CompileFilter(`topic:database`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	filtered := ApplyPage(filter, page)
	if filtered.TotalCount != 5000 {
		t.Errorf("expected total to stay 5000, got %d", filtered.TotalCount)
	}
	if len(filtered.Items) != 3 {
		t.Errorf("expected 3 items, got %d", len(filtered.Items))
	}
	if len(page.Items) != 9 {
		t.Error("original page must not change")
	}

	if ApplyPage(filter, nil) != nil {
		t.Error("nil page should stay nil")
	}
}

func TestConvertQualifierFilter(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "", expected: ""},
		{input: `language:go`, expected: `(lower(Language) == lower("go"))`},
		{input: `-language:"c++"`, expected: `(not (lower(Language) == lower("c++")))`},
		{input: `topic:cli stars:>100`, expected: `(hasTopic("cli")) and (Stars > 100)`},
		{input: `forks:<=5 OR user:spf13`, expected: `(Forks <= 5) or (lower(Owner) == lower("spf13"))`},
		{input: `stars:10`, expected: `(Stars == 10)`},
		{input: `license:mit updated:>2024-01-01`, expected: `(lower(License) == lower("mit")) and (Updated > parseDate("2024-01-01"))`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ConvertQualifierFilter(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestQualifierFilterEvaluation(t *testing.T) {
	repos := generateTestRepositories(12)

	filter, err := CompileFilter(`language:rust -topic:database stars:>=40`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	for _, r := range Apply(filter, repos) {
		if r.GetLanguage() != "Rust" || r.StargazersCount < 40 {
			t.Errorf("unexpected match %s", r.FullName)
		}
		for _, topic := range r.Topics {
			if topic == "database" {
				t.Errorf("unexpected match %s with database topic", r.FullName)
			}
		}
	}
}

func TestIsQualifierFilter(t *testing.T) {
	if !IsQualifierFilter(`language:go`) {
		t.Error("expected qualifier filter")
	}
	if IsQualifierFilter(`Language == "go"`) {
		t.Error("expr syntax should not be treated as qualifiers")
	}
}

func TestCacheEffectiveness(t *testing.T) {
	compiler := NewExprCompiler(WithCache(10))
	expression := `hasTopic("cli") and Stars > 100`

	first, err := compiler.Compile(expression)
	if err != nil {
		t.Fatalf("first compilation failed: %v", err)
	}

	second, err := compiler.Compile(expression)
	if err != nil {
		t.Fatalf("second compilation failed: %v", err)
	}
	if first != second {
		t.Error("expected cached filter on second compilation")
	}

	if compiler.Size() != 1 {
		t.Errorf("expected cache size 1 but got %d", compiler.Size())
	}

	compiler.Clear()
	if compiler.Size() != 0 {
		t.Errorf("expected cache size 0 after clear but got %d", compiler.Size())
	}
}

func TestCustomFunctions(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"popular": func(stars int) bool { return stars >= 1000 },
	}))

	filter, err := compiler.Compile(`popular(Stars)`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}
	if !filter.Match(github.Repository{StargazersCount: 1500}) {
		t.Error("expected match")
	}
	if filter.Expression() != `popular(Stars)` {
		t.Errorf("unexpected expression %q", filter.Expression())
	}
}
