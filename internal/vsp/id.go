package vsp

import (
	"fmt"
	"strings"
)

// None marks an unset subpopulation or virtual-subpopulation id.
const None = -1

// ID pairs a subpopulation id with an optional virtual-subpopulation id.
// A virtual id of None refers to the whole subpopulation.
type ID struct {
	subPop        int
	virtualSubPop int
}

// NewID builds an ID. Negative inputs normalize to None.
func NewID(subPop, virtualSubPop int) ID {
	if subPop < 0 {
		subPop = None
	}
	if virtualSubPop < 0 {
		virtualSubPop = None
	}
	return ID{subPop: subPop, virtualSubPop: virtualSubPop}
}

// WholeSubPop refers to subpopulation subPop without slicing.
func WholeSubPop(subPop int) ID {
	return NewID(subPop, None)
}

func (id ID) SubPop() int        { return id.subPop }
func (id ID) VirtualSubPop() int { return id.virtualSubPop }

// Valid reports whether the subpopulation id is set.
func (id ID) Valid() bool { return id.subPop != None }

// IsVirtual reports whether the id names a virtual subpopulation.
func (id ID) IsVirtual() bool { return id.virtualSubPop != None }

func (id ID) String() string {
	if !id.Valid() {
		return "(none)"
	}
	if !id.IsVirtual() {
		return fmt.Sprintf("(%d)", id.subPop)
	}
	return fmt.Sprintf("(%d, %d)", id.subPop, id.virtualSubPop)
}

// List is an ordered selection of (virtual) subpopulations. The zero value
// selects nothing; All() selects every available one once expanded against a
// population.
type List struct {
	handles  []ID
	allAvail bool
}

// NewList builds an explicit selection.
func NewList(handles ...ID) List {
	return List{handles: append([]ID(nil), handles...)}
}

// All returns the wildcard selection. It must be expanded with Expand before
// iteration because a population's subpopulations and splitter can change
// between operator invocations.
func All() List {
	return List{allAvail: true}
}

func (l List) AllAvail() bool { return l.allAvail }
func (l List) Empty() bool    { return !l.allAvail && len(l.handles) == 0 }
func (l List) Len() int       { return len(l.handles) }

func (l List) At(i int) ID { return l.handles[i] }

// Handles returns a copy of the explicit selection.
func (l List) Handles() []ID {
	return append([]ID(nil), l.handles...)
}

// Contains reports whether the explicit selection holds id.
func (l List) Contains(id ID) bool {
	for _, h := range l.handles {
		if h == id {
			return true
		}
	}
	return false
}

// Overlaps reports whether any handle refers to subPop.
func (l List) Overlaps(subPop int) bool {
	for _, h := range l.handles {
		if h.subPop == subPop {
			return true
		}
	}
	return false
}

// Expand binds the selection to a concrete population. The wildcard expands
// to every virtual subpopulation of every subpopulation, or to the whole
// subpopulation where no splitter is assigned. Explicit handles are validated
// against the population's current shape.
func (l List) Expand(p Population) (List, error) {
	if l.allAvail {
		expanded := List{}
		for sp := 0; sp < p.NumSubPops(); sp++ {
			n := p.NumVirtualSubPops(sp)
			if n == 0 {
				expanded.handles = append(expanded.handles, WholeSubPop(sp))
				continue
			}
			for v := 0; v < n; v++ {
				expanded.handles = append(expanded.handles, NewID(sp, v))
			}
		}
		return expanded, nil
	}
	for _, h := range l.handles {
		if !h.Valid() || h.subPop >= p.NumSubPops() {
			return List{}, fmt.Errorf("subpopulation %s does not exist", h)
		}
		if h.IsVirtual() && h.virtualSubPop >= p.NumVirtualSubPops(h.subPop) {
			return List{}, fmt.Errorf("virtual subpopulation %s does not exist", h)
		}
	}
	return List{handles: append([]ID(nil), l.handles...)}, nil
}

func (l List) String() string {
	if l.allAvail {
		return "(all)"
	}
	parts := make([]string, len(l.handles))
	for i, h := range l.handles {
		parts[i] = h.String()
	}
	return strings.Join(parts, ", ")
}
