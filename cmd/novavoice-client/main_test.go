package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "короткая строка без изменений",
			input:    "hello",
			max:      40,
			expected: "hello",
		},
		{
			name:     "длинная строка обрезается",
			input:    "aaaaaaaaaabbbbbbbbbbccccccccccdddddddddde",
			max:      40,
			expected: "aaaaaaaaaabbbbbbbbbbccccccccccdddddddddd...",
		},
		{
			name:     "кириллица режется по рунам, а не по байтам",
			input:    "привет, это длинный текст для проверки обрезки истории",
			max:      40,
			expected: "привет, это длинный текст для проверки о...",
		},
		{
			name:     "строка ровно в лимит",
			input:    "1234567890",
			max:      10,
			expected: "1234567890",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateText(tt.input, tt.max))
		})
	}
}
