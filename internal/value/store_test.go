package value_test

import (
	"testing"

	"github.com/cvm-lang/cvm/internal/value"
)

func TestStoreNewRecordsLocation(t *testing.T) {
	s := value.NewStore()
	v := value.NewInteger(7)
	loc := s.New(v)
	if v.Location() != loc {
		t.Fatalf("New did not record the allocated location on the value: got %d, want %d", v.Location(), loc)
	}
	if got := s.Get(loc); got != value.Value(v) {
		t.Fatalf("Get(%d) did not return the value just allocated", loc)
	}
}

func TestStoreSwapRewritesLocation(t *testing.T) {
	s := value.NewStore()
	a := s.New(value.NewInteger(1))
	_ = s.New(value.NewInteger(2))
	s.Swap(0, 1)
	moved := s.Get(0).(*value.Integer)
	if moved.Value != 2 {
		t.Fatalf("Swap did not move the source cell's contents: got %d, want 2", moved.Value)
	}
	if moved.Location() != 0 {
		t.Fatalf("Swap did not rewrite the moved value's recorded location: got %d, want 0", moved.Location())
	}
	_ = a
}

func TestStoreTruncate(t *testing.T) {
	s := value.NewStore()
	s.New(value.NewInteger(1))
	s.New(value.NewInteger(2))
	s.New(value.NewInteger(3))
	s.Truncate(1)
	if s.Len() != 1 {
		t.Fatalf("Truncate(1) left Len() == %d, want 1", s.Len())
	}
}
