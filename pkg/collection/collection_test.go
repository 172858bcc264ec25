package collection_test

import (
	"strconv"
	"testing"

	"github.com/ordersync/ordersync/pkg/collection"
)

func TestMap(t *testing.T) {
	got := collection.Map([]int{1, 2, 3}, strconv.Itoa)
	if len(got) != 3 || got[0] != "1" || got[2] != "3" {
		t.Errorf("got %v", got)
	}
}

func TestFilter(t *testing.T) {
	got := collection.Filter([]int{1, 2, 3, 4}, func(n int) bool { return n%2 == 0 })
	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Errorf("got %v", got)
	}
}

func TestFirst(t *testing.T) {
	v, ok := collection.First([]string{"a", "bb", "ccc"}, func(s string) bool { return len(s) == 2 })
	if !ok || v != "bb" {
		t.Errorf("got %q, %v", v, ok)
	}
	if _, ok := collection.First([]string{}, func(string) bool { return true }); ok {
		t.Error("empty slice must not match")
	}
}

func TestIndexOfAndContains(t *testing.T) {
	s := []int{10, 20, 30}
	if idx := collection.IndexOf(s, func(n int) bool { return n == 20 }); idx != 1 {
		t.Errorf("index = %d", idx)
	}
	if idx := collection.IndexOf(s, func(n int) bool { return n == 99 }); idx != -1 {
		t.Errorf("missing element index = %d", idx)
	}
	if !collection.Contains(s, func(n int) bool { return n == 30 }) {
		t.Error("expected contains")
	}
}

func TestPrependDoesNotMutate(t *testing.T) {
	orig := []int{2, 3}
	got := collection.Prepend(orig, 1)
	if len(got) != 3 || got[0] != 1 || got[1] != 2 {
		t.Errorf("got %v", got)
	}
	if orig[0] != 2 {
		t.Error("original slice mutated")
	}
}
