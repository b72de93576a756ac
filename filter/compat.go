package filter

import (
	"fmt"
	"regexp"
	"strings"
)

type qualifierPattern struct {
	re      *regexp.Regexp
	replace func(matches []string) string
}

func negate(prefix, expression string) string {
	if prefix == "-" {
		return "not (" + expression + ")"
	}
	return expression
}

var adjacentGroups = regexp.MustCompile(`\)\s+\(`)

// Patterns run in order; quoted forms come before bare ones
var qualifierPatterns = []qualifierPattern{
	// language:"go" or -language:go
	{
		re: regexp.MustCompile(`(-?)language:(?:"([^"]+)"|([^\s()]+))`),
		replace: func(m []string) string {
			return negate(m[1], fmt.Sprintf(`lower(Language) == lower(%q)`, m[2]+m[3]))
		},
	},
	// topic:"cli" or -topic:cli
	{
		re: regexp.MustCompile(`(-?)topic:(?:"([^"]+)"|([^\s()]+))`),
		replace: func(m []string) string {
			return negate(m[1], fmt.Sprintf(`hasTopic(%q)`, m[2]+m[3]))
		},
	},
	// license:mit
	{
		re: regexp.MustCompile(`(-?)license:(?:"([^"]+)"|([^\s()]+))`),
		replace: func(m []string) string {
			return negate(m[1], fmt.Sprintf(`lower(License) == lower(%q)`, m[2]+m[3]))
		},
	},
	// user:octocat
	{
		re: regexp.MustCompile(`(-?)user:(?:"([^"]+)"|([^\s()]+))`),
		replace: func(m []string) string {
			return negate(m[1], fmt.Sprintf(`lower(Owner) == lower(%q)`, m[2]+m[3]))
		},
	},
	// stars:>100, forks:<=5, stars:10
	{
		re: regexp.MustCompile(`(stars|forks):(>=|<=|>|<)?(\d+)`),
		replace: func(m []string) string {
			op := m[2]
			if op == "" {
				op = "=="
			}
			field := "Stars"
			if m[1] == "forks" {
				field = "Forks"
			}
			return fmt.Sprintf(`%s %s %s`, field, op, m[3])
		},
	},
	// updated:>2024-01-01
	{
		re: regexp.MustCompile(`(?:updated|pushed):(>=|<=|>|<)(\d{4}-\d{2}-\d{2})`),
		replace: func(m []string) string {
			return fmt.Sprintf(`Updated %s parseDate(%q)`, m[1], m[2])
		},
	},
}

// ConvertQualifierFilter converts search qualifier syntax such as
// `language:go stars:>100` to an expr expression. Space separated qualifiers
// are joined with "and".
func ConvertQualifierFilter(qualifiers string) (string, error) {
	if strings.TrimSpace(qualifiers) == "" {
		return "", nil
	}

	filter := strings.ReplaceAll(qualifiers, " AND ", " and ")
	filter = strings.ReplaceAll(filter, " OR ", " or ")
	filter = strings.ReplaceAll(filter, " NOT ", " not ")

	for _, p := range qualifierPatterns {
		filter = p.re.ReplaceAllStringFunc(filter, func(match string) string {
			return "(" + p.replace(p.re.FindStringSubmatch(match)) + ")"
		})
	}

	// Adjacent qualifiers mean "and"
	filter = adjacentGroups.ReplaceAllString(filter, ") and (")

	return filter, nil
}

// IsQualifierFilter checks if a filter uses search qualifier syntax
func IsQualifierFilter(filter string) bool {
	qualifiers := []string{
		"language:",
		"topic:",
		"license:",
		"user:",
		"stars:",
		"forks:",
		"updated:",
		"pushed:",
	}

	for _, q := range qualifiers {
		if strings.Contains(filter, q) {
			return true
		}
	}

	return false
}
