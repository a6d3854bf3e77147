package eval

import (
	"fmt"
	"os"

	"github.com/cvm-lang/cvm/internal/value"
)

// maybeCollect runs the GC trigger heuristic of spec §4.5 before each
// micro-step: collect when the store is at least 80% full, and suppress
// further attempts at a capacity that already failed to reclaim enough,
// until the store has grown past it.
func (st *State) maybeCollect() {
	capacity := st.Store.Cap()
	if capacity <= st.insufficientCapacity {
		return
	}
	if float64(st.Store.Len()) < 0.8*float64(capacity) {
		return
	}
	collected := st.gc()
	if st.debug {
		fmt.Fprintf(os.Stderr, "[Debug] GC collected %d store cells\n", collected)
	}
	if float64(st.Store.Len()) >= 0.8*float64(capacity) {
		st.insufficientCapacity = capacity
	}
}

// gc runs one mark-sweep-compact pass and returns the number of cells
// reclaimed. Roots are the value register (if it is a Closure or
// Continuation) and the entire evaluation stack (spec §4.5).
func (st *State) gc() int {
	marker := newMarker(st.Store)
	marker.markValue(st.Reg)
	marker.markStack(st.Stack)

	before := st.Store.Len()
	relocated := make(map[int]int, len(marker.locations))
	write := 0
	for read := 0; read < before; read++ {
		if !marker.locations[read] {
			continue
		}
		if write != read {
			st.Store.Swap(write, read)
		}
		relocated[read] = write
		write++
	}
	st.Store.Truncate(write)

	for _, c := range marker.closures {
		relocateEnv(c.Env, relocated)
	}
	for _, s := range marker.stacks {
		for _, layer := range s {
			if layer.Frame {
				relocateEnv(*layer.Env, relocated)
			}
		}
	}
	return before - write
}

func relocateEnv(env value.Environment, relocated map[int]int) {
	for i := range env {
		if n, ok := relocated[env[i].Loc]; ok {
			env[i].Loc = n
		}
	}
}

// marker accumulates the two independently tracked visited sets the spec
// requires: visited locations (integers) and visited container identities
// (closures and stack snapshots), the latter preventing infinite
// traversal over cyclic reference graphs (letrec-over-lambda, or
// continuations that capture themselves).
type marker struct {
	store     *value.Store
	locations map[int]bool
	closures  []*value.Closure
	stacks    []value.Stack

	seenClosures map[*value.Closure]bool
}

func newMarker(store *value.Store) *marker {
	return &marker{
		store:        store,
		locations:    map[int]bool{},
		seenClosures: map[*value.Closure]bool{},
	}
}

func (m *marker) markValue(v value.Value) {
	switch t := v.(type) {
	case *value.Closure:
		m.markClosure(t)
	case *value.Continuation:
		m.markStack(t.Stack)
	}
}

func (m *marker) markClosure(c *value.Closure) {
	if c == nil || m.seenClosures[c] {
		return
	}
	m.seenClosures[c] = true
	m.closures = append(m.closures, c)
	for _, b := range c.Env {
		m.markLocation(b.Loc)
	}
}

// identity of a Stack, by pointer to its backing array's first element
// when non-empty; empty stacks need no identity tracking since they hold
// nothing to mark twice.
func stackIdentity(s value.Stack) *value.Layer {
	if len(s) == 0 {
		return nil
	}
	return s[0]
}

func (m *marker) markStack(s value.Stack) {
	if len(s) == 0 {
		return
	}
	id := stackIdentity(s)
	for _, seen := range m.stacks {
		if stackIdentity(seen) == id {
			return
		}
	}
	m.stacks = append(m.stacks, s)

	for _, layer := range s {
		if layer.Frame {
			for _, b := range *layer.Env {
				m.markLocation(b.Loc)
			}
		}
		for _, local := range layer.Local {
			m.markLocal(local)
		}
	}
}

func (m *marker) markLocal(local any) {
	switch t := local.(type) {
	case value.Value:
		m.markValue(t)
	case []value.Value:
		for _, v := range t {
			m.markValue(v)
		}
	}
}

func (m *marker) markLocation(loc int) {
	if m.locations[loc] {
		return
	}
	m.locations[loc] = true
	m.markValue(m.store.Get(loc))
}
