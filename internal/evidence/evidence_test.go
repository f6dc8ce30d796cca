package evidence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tenderaudit/internal/evidence"
)

func TestMergeDedupesByRoleAndSource(t *testing.T) {
	tender := []evidence.Entry{
		{Role: evidence.RoleTender, Source: "tender.pdf#12", PageStart: 12, Quote: "投标人须具备一级资质"},
	}
	bid := []evidence.Entry{
		{Role: evidence.RoleBid, Source: "bid.pdf#3", PageStart: 3, Quote: "我方具备一级资质", ChunkID: "bid-c3"},
		{Role: evidence.RoleBid, Source: "bid.pdf#3", PageStart: 3, Quote: "duplicate"},
		{Role: evidence.RoleTender, Source: "tender.pdf#12", Quote: "same source, tender role dup"},
	}

	merged := evidence.Merge(tender, bid)
	assert.Len(t, merged, 2)
	assert.Equal(t, evidence.RoleTender, merged[0].Role)
	assert.Equal(t, evidence.RoleBid, merged[1].Role)
}

func TestMergeSameSourceDifferentRolesKept(t *testing.T) {
	merged := evidence.Merge([]evidence.Entry{
		{Role: evidence.RoleTender, Source: "shared.pdf#1"},
		{Role: evidence.RoleBid, Source: "shared.pdf#1"},
	})
	assert.Len(t, merged, 2)
}

func TestChunkIDsFallBackToSource(t *testing.T) {
	entries := []evidence.Entry{
		{Role: evidence.RoleBid, Source: "bid.pdf#3", ChunkID: "bid-c3"},
		{Role: evidence.RoleBid, Source: "bid.pdf#4"},
		{Role: evidence.RoleTender, Source: "tender.pdf#1"},
	}
	assert.Equal(t, []string{"bid-c3", "bid.pdf#4"}, evidence.ChunkIDs(entries, evidence.RoleBid))
	assert.Equal(t, []string{"tender.pdf#1"}, evidence.ChunkIDs(entries, evidence.RoleTender))
}

func TestHasRole(t *testing.T) {
	entries := []evidence.Entry{{Role: evidence.RoleBid, Source: "b"}}
	assert.True(t, evidence.HasRole(entries, evidence.RoleBid))
	assert.False(t, evidence.HasRole(entries, evidence.RoleTender))
	assert.False(t, evidence.HasRole(nil, evidence.RoleBid))
}
