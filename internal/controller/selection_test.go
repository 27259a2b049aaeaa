package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionStoreBasics(t *testing.T) {
	s := NewSelectionStore()

	s.Select("k", []string{"b", "a"})
	assert.Equal(t, []string{"a", "b"}, s.Selected("k"))

	s.Toggle("k", "c")
	s.Toggle("k", "a")
	assert.Equal(t, []string{"b", "c"}, s.Selected("k"))

	s.Unselect("k", []string{"b", "missing"})
	assert.Equal(t, []string{"c"}, s.Selected("k"))

	s.Clear("k")
	assert.Empty(t, s.Selected("k"))
}

func TestSelectionStoreIsolatesKeys(t *testing.T) {
	s := NewSelectionStore()

	s.Select("posts.p1.comments", []string{"c1"})
	s.Select("posts.p2.comments", []string{"c9"})

	assert.Equal(t, []string{"c1"}, s.Selected("posts.p1.comments"))
	assert.Equal(t, []string{"c9"}, s.Selected("posts.p2.comments"))
}

func TestSelectReplacesExisting(t *testing.T) {
	s := NewSelectionStore()

	s.Select("k", []string{"a", "b"})
	s.Select("k", []string{"c"})

	assert.Equal(t, []string{"c"}, s.Selected("k"))
}

func TestToggleOnUnknownKey(t *testing.T) {
	s := NewSelectionStore()
	s.Toggle("fresh", "x")
	assert.Equal(t, []string{"x"}, s.Selected("fresh"))
}
