package util

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	out := Map([]int{1, 2, 3}, func(i int) string { return strconv.Itoa(i * 2) })
	assert.Equal(t, []string{"2", "4", "6"}, out)

	assert.Empty(t, Map([]int(nil), func(i int) int { return i }))
}

func TestFind(t *testing.T) {
	coll := []string{"alpha", "beta", "gamma", "beta"}

	found, ok := Find(coll, func(s string) bool { return s[0] == 'b' })
	assert.True(t, ok)
	assert.Equal(t, "beta", found)

	missing, ok := Find(coll, func(s string) bool { return s == "delta" })
	assert.False(t, ok)
	assert.Equal(t, "", missing)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty("", ""))
	assert.Equal(t, "", FirstNonEmpty())
}
