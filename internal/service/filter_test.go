package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckContent(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		ok     bool
		reason string
	}{
		{"normal question", "What time do the Lakers play tonight?", true, ""},
		{"single char", "x", false, "too_short"},
		{"short allow-listed", "hi", true, ""},
		{"short allow-listed upper", "OK", true, ""},
		{"too long", strings.Repeat("a", 501), false, "too_long"},
		{"spam keywords", "You are a winner, claim prize now", false, "spam"},
		{"question override beats keywords", "What is free will?", true, ""},
		{"trailing question mark override", "the prize inside the box?", true, ""},
		{"plain statement", "thanks for the help yesterday", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := CheckContent(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}
