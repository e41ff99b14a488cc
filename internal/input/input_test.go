package input

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeleteWordLength(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 1},
		{"single char", "a", 1},
		{"one word", "hello", 5},
		{"last word", "hello world", 5},
		{"trailing space", "hello world ", 6},
		{"two spaces", "hello  ", 1},
		{"cyrillic", "привет мир", 3},
		{"newline", "first\nsecond", 6},
		{"window", strings.Repeat("x", 30), DeleteWordWindow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeleteWordLength(tt.text))
		})
	}
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "space", KeySpace.String())
	assert.Equal(t, "return", KeyReturn.String())
	assert.Equal(t, "key(7)", Key(7).String())
}
