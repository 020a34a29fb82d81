package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes a caller-supplied direction to ASC or DESC.
// Anything other than "asc" is DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns the column for sortField, or defaultField when
// the field is empty or not whitelisted. Only whitelisted names ever reach SQL.
func ValidateSortField(sortField string, allowedFields map[string]string, defaultField string) string {
	if column, ok := allowedFields[strings.TrimSpace(sortField)]; ok {
		return column
	}
	return defaultField
}

// ExpenseSortFields maps the public sort keys of the expense listing to columns
var ExpenseSortFields = map[string]string{
	"incurred_on": "incurred_on",
	"amount":      "amount",
	"title":       "title",
	"created_at":  "created_at",
	"expense_for": "expense_for",
}

// expenseOrder builds the ORDER BY of an expense listing. created_at breaks
// ties so pages are stable.
func expenseOrder(sortBy, sortOrder string) string {
	column := ValidateSortField(sortBy, ExpenseSortFields, "incurred_on")
	order := column + " " + ValidateSortOrder(sortOrder)
	if column != "created_at" {
		order += ", created_at DESC"
	}
	return order
}
