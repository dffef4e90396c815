package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDraftID_Deterministic(t *testing.T) {
	a := NewDraftID("bingitech", "micro-blog", "technical_deep_dives", "v1")
	b := NewDraftID("bingitech", "micro-blog", "technical_deep_dives", "v1")

	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestNewDraftID_DistinctPerInput(t *testing.T) {
	base := NewDraftID("bingitech", "micro-blog", "technical_deep_dives", "v1")

	variants := []string{
		NewDraftID("other-brand", "micro-blog", "technical_deep_dives", "v1"),
		NewDraftID("bingitech", "professional", "technical_deep_dives", "v1"),
		NewDraftID("bingitech", "micro-blog", "team_leadership_in_tech", "v1"),
		NewDraftID("bingitech", "micro-blog", "technical_deep_dives", "v2"),
	}
	for _, v := range variants {
		assert.NotEqual(t, base, v)
	}
}

func TestNewDraftID_SeparatorIsUnambiguous(t *testing.T) {
	// Shifting a "|" between fields must not produce the same id.
	a := NewDraftID("brand", "micro|blog", "pillar", "s")
	b := NewDraftID("brand|micro", "blog", "pillar", "s")
	assert.NotEqual(t, a, b)
}

func TestPublishIdempotencyKey_StableAcrossRetries(t *testing.T) {
	d := &Draft{ID: "abc123", Platform: "micro-blog"}

	k1 := d.PublishIdempotencyKey()
	k2 := d.PublishIdempotencyKey()

	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 24)

	other := &Draft{ID: "abc123", Platform: "professional"}
	assert.NotEqual(t, k1, other.PublishIdempotencyKey())
}

func TestCanTransition_Matrix(t *testing.T) {
	all := []DraftStatus{
		DraftPendingReview, DraftApproved, DraftRejected, DraftPublished, DraftFailed,
	}
	allowed := map[DraftStatus]map[DraftStatus]bool{
		DraftPendingReview: {DraftApproved: true, DraftRejected: true},
		DraftApproved:      {DraftPublished: true, DraftFailed: true},
		DraftFailed:        {DraftApproved: true},
		DraftRejected:      {},
		DraftPublished:     {},
	}

	for _, from := range all {
		for _, to := range all {
			d := &Draft{Status: from}
			assert.Equal(t, allowed[from][to], d.CanTransition(to),
				"%s -> %s", from, to)
		}
	}
}

func TestDraftStatus_IsTerminal(t *testing.T) {
	assert.True(t, DraftPublished.IsTerminal())
	assert.True(t, DraftFailed.IsTerminal())
	assert.False(t, DraftPendingReview.IsTerminal())
	assert.False(t, DraftApproved.IsTerminal())
	assert.False(t, DraftRejected.IsTerminal())
}

func TestDraftValidate(t *testing.T) {
	now := time.Now().UTC()
	valid := func() *Draft {
		return &Draft{
			ID:        "id-1",
			BrandID:   "bingitech",
			Platform:  "micro-blog",
			Pillar:    "technical_deep_dives",
			Body:      "post body",
			Status:    DraftPendingReview,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	require.NoError(t, valid().Validate())

	t.Run("media-only draft is valid", func(t *testing.T) {
		d := valid()
		d.Body = ""
		d.MediaRefs = []string{"https://cdn.example/img.png"}
		assert.NoError(t, d.Validate())
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		cases := map[string]func(*Draft){
			"id":       func(d *Draft) { d.ID = "" },
			"brand":    func(d *Draft) { d.BrandID = "" },
			"platform": func(d *Draft) { d.Platform = "" },
			"pillar":   func(d *Draft) { d.Pillar = "" },
			"content":  func(d *Draft) { d.Body = ""; d.MediaRefs = nil },
		}
		for name, mutate := range cases {
			d := valid()
			mutate(d)
			assert.Error(t, d.Validate(), name)
		}
	})
}
