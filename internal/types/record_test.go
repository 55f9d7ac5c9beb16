package types

import (
	"testing"
)

func TestRecordGetString(t *testing.T) {
	rec := NewRecord("https://example.com/p/1")
	rec.Set("title", "Margaux")
	rec.Set("price", 22.99)
	rec.Set("count", 7)

	if got := rec.GetString("title"); got != "Margaux" {
		t.Errorf("expected Margaux, got %q", got)
	}
	if got := rec.GetString("price"); got != "22.99" {
		t.Errorf("expected 22.99, got %q", got)
	}
	if got := rec.GetString("count"); got != "7" {
		t.Errorf("expected 7, got %q", got)
	}
	if got := rec.GetString("missing"); got != "" {
		t.Errorf("expected empty for missing field, got %q", got)
	}
}

func TestRecordValid(t *testing.T) {
	rec := NewRecord("https://example.com/p/1")
	if rec.Valid() {
		t.Error("empty record should be invalid")
	}

	rec.Set("price", 9.99)
	if rec.Valid() {
		t.Error("record without title should be invalid")
	}

	rec.Set("title", "Margaux")
	if !rec.Valid() {
		t.Error("record with title should be valid")
	}
}

func TestRecordToFlatMap(t *testing.T) {
	rec := NewRecord("https://example.com/p/1")
	rec.Set("title", "Margaux")
	rec.Set("price", 22.99)

	flat := rec.ToFlatMap()
	if flat["title"] != "Margaux" || flat["price"] != "22.99" {
		t.Errorf("unexpected flat map: %v", flat)
	}
	if flat["url"] != "https://example.com/p/1" {
		t.Errorf("expected url key, got %v", flat)
	}
}

func TestPageLazyDocument(t *testing.T) {
	page := NewBrowserPage("https://example.com/p/1", "https://example.com/p/1",
		[]byte(`<html><body><h1>Margaux</h1></body></html>`), 0)

	doc, err := page.Document()
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if got := doc.Find("h1").Text(); got != "Margaux" {
		t.Errorf("expected h1 text, got %q", got)
	}

	again, err := page.Document()
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if doc != again {
		t.Error("expected cached document on second call")
	}
}
