package matcher

import "strings"

// ParseSkills splits raw comma-separated input and trims each token.
// Empty tokens from trailing or doubled commas are kept unless dropEmpty is set,
// so "a, b ,c," yields ["a" "b" "c" ""].
func ParseSkills(raw string, dropEmpty bool) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" && dropEmpty {
			continue
		}
		skills = append(skills, s)
	}
	return skills
}
