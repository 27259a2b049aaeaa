package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterSanitize(t *testing.T) {
	f := Filter{
		"status":   "active",
		"q":        "",
		"tags":     []interface{}{},
		"range":    map[string]interface{}{},
		"missing":  nil,
		"priority": 0, // zero numbers are real constraints, not empties
		"flag":     false,
	}

	got := f.Sanitize()

	assert.Equal(t, Filter{
		"status":   "active",
		"priority": 0,
		"flag":     false,
	}, got)
}

func TestFilterSanitizeKeepsNonEmptyContainers(t *testing.T) {
	f := Filter{
		"tags":  []interface{}{"a"},
		"range": map[string]interface{}{"gte": 1},
	}
	assert.Equal(t, f, f.Sanitize())
}

func TestFilterClone(t *testing.T) {
	f := Filter{"a": 1}
	c := f.Clone()
	c["b"] = 2

	assert.Equal(t, Filter{"a": 1}, f)
	assert.Nil(t, Filter(nil).Clone())
}

func TestPageResultTotalValue(t *testing.T) {
	var r *PageResult
	assert.Equal(t, int64(-1), r.TotalValue())

	r = &PageResult{}
	assert.Equal(t, int64(-1), r.TotalValue())

	r.Total = Int64(42)
	assert.Equal(t, int64(42), r.TotalValue())
}
