package history

import (
	"context"
	"testing"
)

// Both implementations must satisfy the same behaviour; run the suite
// against each.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func Test_Store_AppendAndList(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, q := range []string{"first", "second", "third"} {
				if err := store.Append(ctx, Entry{SessionID: "s1", Question: q, Answer: "a", Status: "success"}); err != nil {
					t.Fatalf("append: %v", err)
				}
			}

			got, err := store.BySession(ctx, "s1")
			if err != nil {
				t.Fatalf("by session: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("want 3 entries, got %d", len(got))
			}
			// Insertion order is preserved.
			for i, q := range []string{"first", "second", "third"} {
				if got[i].Question != q {
					t.Errorf("entry %d: want question %q, got %q", i, q, got[i].Question)
				}
				if got[i].CreatedAt.IsZero() {
					t.Errorf("entry %d: created_at not stamped", i)
				}
			}
		})
	}
}

func Test_Store_SessionsAreIsolated(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := store.Append(ctx, Entry{SessionID: "a", Question: "qa", Answer: "x"}); err != nil {
				t.Fatalf("append: %v", err)
			}
			if err := store.Append(ctx, Entry{SessionID: "b", Question: "qb", Answer: "y"}); err != nil {
				t.Fatalf("append: %v", err)
			}

			if err := store.Clear(ctx, "a"); err != nil {
				t.Fatalf("clear: %v", err)
			}

			gotA, err := store.BySession(ctx, "a")
			if err != nil {
				t.Fatalf("by session a: %v", err)
			}
			if len(gotA) != 0 {
				t.Errorf("session a should be empty after clear, got %d entries", len(gotA))
			}

			gotB, err := store.BySession(ctx, "b")
			if err != nil {
				t.Fatalf("by session b: %v", err)
			}
			if len(gotB) != 1 || gotB[0].Question != "qb" {
				t.Errorf("session b must be untouched, got %+v", gotB)
			}
		})
	}
}

func Test_Store_EmptySession(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.BySession(context.Background(), "nope")
			if err != nil {
				t.Fatalf("by session: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("want no entries, got %d", len(got))
			}
		})
	}
}
