package querycache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"refetch/pkg/model"
)

func TestKeyCanonicalStableAcrossMapOrder(t *testing.T) {
	k1 := Key{
		Resource: "comments",
		OwnerID:  "p1",
		PerPage:  25,
		Filter:   model.Filter{"a": 1, "b": 2, "c": 3},
	}
	k2 := Key{
		Resource: "comments",
		OwnerID:  "p1",
		PerPage:  25,
		Filter:   model.Filter{"c": 3, "b": 2, "a": 1},
	}

	assert.Equal(t, k1.canonical(), k2.canonical())
}

func TestKeyCanonicalDistinguishesEveryField(t *testing.T) {
	base := Key{
		Resource:    "comments",
		OwnerID:     "p1",
		TargetField: "post_id",
		PerPage:     25,
		Sort:        model.Sort{Field: "id", Order: model.OrderAsc},
		Filter:      model.Filter{"status": "active"},
	}

	variants := []Key{}

	k := base
	k.Resource = "reviews"
	variants = append(variants, k)

	k = base
	k.OwnerID = "p2"
	variants = append(variants, k)

	k = base
	k.TargetField = "author_id"
	variants = append(variants, k)

	k = base
	k.PerPage = 50
	variants = append(variants, k)

	k = base
	k.Sort = model.Sort{Field: "id", Order: model.OrderDesc}
	variants = append(variants, k)

	k = base
	k.Filter = model.Filter{"status": "archived"}
	variants = append(variants, k)

	k = base
	k.Meta = map[string]interface{}{"embed": "author"}
	variants = append(variants, k)

	for i, v := range variants {
		assert.NotEqual(t, base.canonical(), v.canonical(), "variant %d must invalidate the sequence", i)
	}
}
