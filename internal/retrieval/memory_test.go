package retrieval

import (
	"context"
	"testing"
)

func seedMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	m.Add("p1", "", CorpusTender, Passage{ChunkID: "t1", Source: "tender.pdf#5", Quote: "投标人须具备建筑工程施工总承包一级资质"})
	m.Add("p1", "", CorpusTender, Passage{ChunkID: "t2", Source: "tender.pdf#9", Quote: "工期要求不超过180个日历天"})
	m.Add("p1", "甲公司", CorpusBid, Passage{ChunkID: "b1", Source: "bid.pdf#3", Quote: "我方具备建筑工程施工总承包一级资质，证书编号略"})
	m.Add("p1", "乙公司", CorpusBid, Passage{ChunkID: "b9", Source: "other.pdf#1", Quote: "乙公司的无关内容"})
	return m
}

func TestMemoryRetrieveRanksByOverlap(t *testing.T) {
	m := seedMemory(t)
	got, err := m.Retrieve(context.Background(), Query{
		ProjectID: "p1",
		Corpus:    CorpusTender,
		Text:      "投标人是否具备施工总承包一级资质",
		TopK:      2,
	})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected at least one passage")
	}
	if got[0].ChunkID != "t1" {
		t.Fatalf("expected t1 ranked first, got %s", got[0].ChunkID)
	}
	if got[0].Score <= 0 {
		t.Fatalf("expected positive score, got %f", got[0].Score)
	}
}

func TestMemoryRetrieveScopesBidCorpusByBidder(t *testing.T) {
	m := seedMemory(t)
	got, err := m.Retrieve(context.Background(), Query{
		ProjectID: "p1",
		Bidder:    "甲公司",
		Corpus:    CorpusBid,
		Text:      "具备一级资质",
		TopK:      5,
	})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	for _, p := range got {
		if p.ChunkID == "b9" {
			t.Fatal("must not leak another bidder's passages")
		}
	}
}

func TestMemoryRetrieveNoResults(t *testing.T) {
	m := NewMemory()
	got, err := m.Retrieve(context.Background(), Query{ProjectID: "p1", Corpus: CorpusTender, Text: "任何问题"})
	if err != nil {
		t.Fatalf("no results must not be an error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}
