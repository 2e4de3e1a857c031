package scan

import "testing"

func items(texts ...string) []Item {
	out := make([]Item, len(texts))
	for i, t := range texts {
		out[i] = Item{Key: Key("k" + string(rune('0'+i))), Text: t}
	}
	return out
}

func TestScan_NullCursorFirstMatch(t *testing.T) {
	its := items("a fox", "a dog", "a FOX jumps")
	got := Scan("fox", "", its)
	if !got.Located {
		t.Fatal("expected Located")
	}
	if got.Index != 0 || got.Item.Key != its[0].Key {
		t.Errorf("Located: got index %d key %q, want 0 %q", got.Index, got.Item.Key, its[0].Key)
	}
}

func TestScan_CursorSkipsInclusive(t *testing.T) {
	its := items("a fox", "a dog", "a FOX jumps")
	got := Scan("fox", its[0].Key, its)
	if !got.Located {
		t.Fatal("expected Located")
	}
	if got.Index != 2 {
		t.Errorf("Index: got %d, want 2", got.Index)
	}
}

func TestScan_NoMatchExhausted(t *testing.T) {
	got := Scan("fox", "", items("a dog"))
	if !got.Exhausted() {
		t.Fatalf("expected Exhausted, got %+v", got)
	}
	if got.Index != -1 {
		t.Errorf("Index: got %d, want -1", got.Index)
	}
}

func TestScan_CursorDoesNotReconsiderEarlierItems(t *testing.T) {
	its := items("fox one", "fox two", "dog", "cat")
	got := Scan("fox", its[1].Key, its)
	if !got.Exhausted() {
		t.Fatalf("expected Exhausted after cursor, got %+v", got)
	}
}

func TestScan_CursorAtLastItem(t *testing.T) {
	its := items("fox", "fox")
	if got := Scan("fox", its[1].Key, its); got.Located {
		t.Fatalf("expected Exhausted, got %+v", got)
	}
}

func TestScan_MissingCursorBehavesLikeNull(t *testing.T) {
	its := items("a dog", "a fox", "another fox")
	withMissing := Scan("FOX", "gone", its)
	withNull := Scan("FOX", "", its)
	if withMissing != withNull {
		t.Errorf("missing cursor: got %+v, want %+v", withMissing, withNull)
	}
	if withMissing.Index != 1 {
		t.Errorf("Index: got %d, want 1", withMissing.Index)
	}
}

func TestScan_EmptyWindow(t *testing.T) {
	if got := Scan("fox", "k0", nil); got.Located {
		t.Fatalf("empty window: got %+v", got)
	}
}

func TestScan_CaseInsensitiveQuery(t *testing.T) {
	its := items("Breaking NEWS today")
	if got := Scan("news TODAY", "", its); !got.Located {
		t.Fatal("expected case-insensitive match")
	}
}

func TestCenter_LastStraddlingWins(t *testing.T) {
	its := []Item{
		{Key: "a", Top: 0, Bottom: 300},
		{Key: "b", Top: 350, Bottom: 420},
		{Key: "c", Top: 400, Bottom: 700},
		{Key: "d", Top: 701, Bottom: 900},
	}
	got, ok := Center(its, 800)
	if !ok {
		t.Fatal("expected a center item")
	}
	if got.Key != "c" {
		t.Errorf("Center: got %q, want %q", got.Key, "c")
	}
}

func TestCenter_BoundariesInclusive(t *testing.T) {
	its := []Item{{Key: "top", Top: 400, Bottom: 500}}
	if got, ok := Center(its, 800); !ok || got.Key != "top" {
		t.Errorf("top edge: got %q ok=%v", got.Key, ok)
	}
	its = []Item{{Key: "bottom", Top: 100, Bottom: 400}}
	if got, ok := Center(its, 800); !ok || got.Key != "bottom" {
		t.Errorf("bottom edge: got %q ok=%v", got.Key, ok)
	}
}

func TestCenter_Gap(t *testing.T) {
	its := []Item{{Key: "a", Top: 0, Bottom: 100}, {Key: "b", Top: 500, Bottom: 600}}
	if _, ok := Center(its, 800); ok {
		t.Error("expected no center item in gap")
	}
}

func TestIndexOf(t *testing.T) {
	its := items("x", "y", "z")
	if got := IndexOf(its, its[2].Key); got != 2 {
		t.Errorf("IndexOf: got %d, want 2", got)
	}
	if got := IndexOf(its, "nope"); got != -1 {
		t.Errorf("IndexOf missing: got %d, want -1", got)
	}
}
