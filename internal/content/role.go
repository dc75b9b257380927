package content

import "strings"

// Role is the pedagogical function of a module, inferred once from its title.
type Role string

const (
	RoleIntroduction Role = "introduction"
	RoleFundamentals Role = "fundamentals"
	RolePractical    Role = "practical"
	RoleAssessment   Role = "assessment"
	RoleGeneric      Role = "generic"
)

var roleRules = []struct {
	role     Role
	keywords []string
}{
	{RoleIntroduction, []string{"introduction"}},
	{RoleFundamentals, []string{"core", "concept"}},
	{RolePractical, []string{"practical", "application"}},
	{RoleAssessment, []string{"assessment", "review"}},
}

// Classify applies the ordered substring rules; the first match wins.
func Classify(title string) Role {
	t := strings.ToLower(title)
	for _, rule := range roleRules {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.role
			}
		}
	}
	return RoleGeneric
}
