package languageutil

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "New York", TitleCase("  new YORK "))
	assert.Equal(t, "", TitleCase(""))
}

func TestRandomUsername(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z]+-[a-z]+-\d{3}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, pattern, RandomUsername())
	}
}
