package news

import (
	"fmt"
	"strings"
)

// Fields a source filter can match on.
var filterFields = []string{"headline", "description", "link", "kind"}

// ApplyFilters drops the summaries rejected by the source's filters.
// Excludes win over includes; matching is a case-insensitive substring test.
func ApplyFilters(items []ArticleSummary, filters []ConfigFilter) []ArticleSummary {
	if len(filters) == 0 {
		return items
	}

	result := make([]ArticleSummary, 0, len(items))
	for _, item := range items {
		if excluded, _ := filterReason(item, filters); !excluded {
			result = append(result, item)
		}
	}
	return result
}

func filterReason(item ArticleSummary, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := fieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func fieldValue(item ArticleSummary, field string) string {
	switch field {
	case "headline":
		return item.Headline
	case "description":
		return item.Description
	case "link":
		return item.WebLink
	case "kind":
		return item.Kind
	default:
		return ""
	}
}
