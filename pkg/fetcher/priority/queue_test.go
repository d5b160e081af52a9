package priority

import "testing"

func TestQueue_PopsHighestScoreFirst(t *testing.T) {
	q := New()
	q.Push("low", 0, 0.1)
	q.Push("high", 0, 0.9)
	q.Push("mid", 0, 0.5)

	order := []string{}
	for q.Len() > 0 {
		e, ok := q.Pop()
		if !ok {
			t.Fatal("Pop returned ok=false while Len() > 0")
		}
		order = append(order, e.URL)
	}

	want := []string{"high", "mid", "low"}
	for i, w := range want {
		if order[i] != w {
			t.Errorf("pop order[%d] = %q, want %q (full order: %v)", i, order[i], w, order)
		}
	}
}

func TestQueue_TiesBrokenByDiscoveryOrder(t *testing.T) {
	q := New()
	q.Push("first", 0, 0.5)
	q.Push("second", 0, 0.5)
	q.Push("third", 0, 0.5)

	for _, want := range []string{"first", "second", "third"} {
		e, ok := q.Pop()
		if !ok {
			t.Fatal("Pop returned ok=false unexpectedly")
		}
		if e.URL != want {
			t.Errorf("Pop() = %q, want %q", e.URL, want)
		}
	}
}

func TestQueue_PopEmpty(t *testing.T) {
	q := New()
	if _, ok := q.Pop(); ok {
		t.Error("Pop on empty queue should return ok=false")
	}
}

func TestQueue_Len(t *testing.T) {
	q := New()
	if q.Len() != 0 {
		t.Fatalf("new queue Len() = %d, want 0", q.Len())
	}
	q.Push("a", 0, 1)
	q.Push("b", 1, 1)
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
	q.Pop()
	if q.Len() != 1 {
		t.Fatalf("Len() after one Pop = %d, want 1", q.Len())
	}
}
