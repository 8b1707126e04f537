package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeOnlyCopy(t *testing.T) {
	status, unique := Describe([]string{"a.xlsx::S1"}, nil, 1)
	assert.Equal(t, "only available copy", status)
	assert.False(t, unique)
}

func TestDescribePresentInAll(t *testing.T) {
	status, unique := Describe([]string{"a.xlsx::S1", "b.xlsx::S1"}, nil, 2)
	assert.Equal(t, "present in all 2 copies", status)
	assert.False(t, unique)
}

func TestDescribeSingleInstanceFlagged(t *testing.T) {
	status, unique := Describe(
		[]string{"a.xlsx::S1"},
		[]string{"b.xlsx::S1", "c.xlsx::S1"},
		3,
	)
	assert.Equal(t, "single instance in a.xlsx::S1 - missing from: b.xlsx::S1, c.xlsx::S1", status)
	assert.True(t, unique)
}

func TestDescribePartialPresence(t *testing.T) {
	status, unique := Describe(
		[]string{"a.xlsx::S1", "b.xlsx::S1"},
		[]string{"c.xlsx::S1"},
		3,
	)
	assert.Equal(t, "in 2/3 copies (a.xlsx::S1, b.xlsx::S1); missing from: c.xlsx::S1", status)
	assert.False(t, unique)
}

func TestDescribeDeduplicatesPresentSources(t *testing.T) {
	status, unique := Describe([]string{"a.xlsx::S1", "a.xlsx::S1"}, []string{"b.xlsx::S1"}, 2)
	assert.True(t, unique)
	assert.Contains(t, status, "single instance in a.xlsx::S1")
}
