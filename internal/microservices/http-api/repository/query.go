package repository

import "strings"

func toLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// containsPattern builds a case-insensitive LIKE pattern; callers compare against LOWER(column).
func containsPattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(toLower(s)) + "%"
}

func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
