package services

import (
	"reflect"
	"testing"
)

func TestChunkIDs(t *testing.T) {
	cases := []struct {
		name string
		ids  []string
		size int
		want [][]string
	}{
		{"empty", nil, 30, nil},
		{"under cap", []string{"a", "b"}, 3, [][]string{{"a", "b"}}},
		{"exactly cap", []string{"a", "b", "c"}, 3, [][]string{{"a", "b", "c"}}},
		{"over cap", []string{"a", "b", "c", "d"}, 3, [][]string{{"a", "b", "c"}, {"d"}}},
		{"two full", []string{"a", "b", "c", "d"}, 2, [][]string{{"a", "b"}, {"c", "d"}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := chunkIDs(c.ids, c.size)
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("chunkIDs(%v, %d) = %v, want %v", c.ids, c.size, got, c.want)
			}
		})
	}
}

// An empty uid set must return immediately without issuing any query. The
// nil DB proves it: touching the database here would panic.
func TestGetUsersByIDs_EmptySetIssuesNoQuery(t *testing.T) {
	store := NewStore(nil)

	users, err := store.GetUsersByIDs(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no users, got %v", users)
	}

	users, err = store.GetUsersByIDs([]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no users, got %v", users)
	}
}
