package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeIDPattern(t *testing.T) {
	valid := []string{
		"bet-12345",
		"round_9.retry",
		"a",
		"ABC.def-123_x",
	}
	for _, s := range valid {
		assert.True(t, safeStringRe.MatchString(s), "expected %q to be valid", s)
	}

	invalid := []string{
		"",
		"has space",
		"semi;colon",
		"quote'",
		"<script>",
		"slash/",
		"unicode-日本",
	}
	for _, s := range invalid {
		assert.False(t, safeStringRe.MatchString(s), "expected %q to be rejected", s)
	}
}
