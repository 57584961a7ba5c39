package service

import (
	"regexp"
	"strings"
)

var (
	// + and # are kept so C, C++ and C# stay distinct
	reNonWord = regexp.MustCompile(`[^\p{L}\p{N}+#]+`)
	reSpaces  = regexp.MustCompile(`\s+`)
)

// normalizeSkill lowercases a skill or name, turns punctuation into spaces
// and collapses whitespace, so "Node.js" and "node js" compare equal.
func normalizeSkill(s string) string {
	s = strings.ToLower(s)
	s = reNonWord.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// dedupeSkills drops blanks and repeats (by normalized form), keeping the
// first spelling seen, and removes anything in exclude.
func dedupeSkills(skills []string, exclude map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := normalizeSkill(s)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		if _, ok := exclude[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func skillIndex(skills []string) map[string]struct{} {
	idx := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if key := normalizeSkill(s); key != "" {
			idx[key] = struct{}{}
		}
	}
	return idx
}
