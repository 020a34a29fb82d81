package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "DESC"},
		{"ASC", "ASC"},
		{"asc", "ASC"},
		{"  asc  ", "ASC"},
		{"desc", "DESC"},
		{"sideways", "DESC"},
		{"ASC; DROP TABLE expenses;--", "DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "amount", ValidateSortField("amount", ExpenseSortFields, "incurred_on"))
	assert.Equal(t, "amount", ValidateSortField(" amount ", ExpenseSortFields, "incurred_on"))
	assert.Equal(t, "incurred_on", ValidateSortField("", ExpenseSortFields, "incurred_on"))
	assert.Equal(t, "incurred_on", ValidateSortField("reimbursed_by", ExpenseSortFields, "incurred_on"))
	assert.Equal(t, "incurred_on", ValidateSortField("amount; --", ExpenseSortFields, "incurred_on"))
}

func TestExpenseOrder(t *testing.T) {
	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		want      string
	}{
		{"default", "", "", "incurred_on DESC, created_at DESC"},
		{"amount ascending", "amount", "asc", "amount ASC, created_at DESC"},
		{"created_at needs no tie breaker", "created_at", "asc", "created_at ASC"},
		{"unknown field", "password", "asc", "incurred_on ASC, created_at DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expenseOrder(tt.sortBy, tt.sortOrder))
		})
	}
}
