// Package vsp defines virtual subpopulations: named, possibly overlapping
// slices of one subpopulation described by a splitter. A splitter partitions
// individuals by predicate only; activation flips per-individual visibility
// flags in the storage layer so consumers can iterate a slice without copying
// or reordering anything.
package vsp

import (
	"errors"
	"fmt"

	"gonos/internal/model"
)

// ErrProtocol marks a caller bug in the activate/deactivate discipline: a
// second activation without an intervening deactivation, a deactivation of a
// subpopulation that is not the active one, or an out-of-range id.
var ErrProtocol = errors.New("vsp protocol violation")

// Population is the storage layer a splitter runs against. Individuals are
// addressed by their ordinal index within a subpopulation, which is not
// affected by visibility state.
type Population interface {
	NumSubPops() int
	SubPopSize(subPop int) int
	NumVirtualSubPops(subPop int) int

	Sex(subPop, ind int) model.Sex
	Affected(subPop, ind int) bool
	InfoIdx(field string) (int, error)
	InfoAt(subPop, ind, idx int) float64
	Ploidy() int
	NumLoci() int
	Allele(subPop, ind, locus, slot int) model.Allele

	SetVisible(subPop, ind int, visible bool)
	ResetVisibility(subPop int)
}

// Splitter defines a fixed set of named virtual subpopulations over any
// subpopulation of a population. VSPs do not have to add up to the whole
// subpopulation, nor do they have to be distinct.
//
// Size and Activate validate the subpopulation and VSP ids they are given.
// Contains is the unchecked fast path: the id must be valid and name a VSP
// below NumVirtualSubPops, or it panics.
type Splitter interface {
	// Clone returns a deep copy, including owned child splitters.
	Clone() Splitter

	// NumVirtualSubPops returns the number of VSPs, fixed at construction.
	NumVirtualSubPops() int

	// Size counts the individuals of the VSP over the full, unsliced index
	// order of the subpopulation.
	Size(p Population, subPop, virtualSubPop int) (int, error)

	// Contains reports whether individual ind (ordinal index within
	// id.SubPop()) belongs to the VSP.
	Contains(p Population, ind int, id ID) bool

	// Activate marks individuals of the VSP visible and all others in the
	// subpopulation invisible. At most one VSP may be active per splitter
	// instance; activating while another is active is a protocol error.
	Activate(p Population, subPop, virtualSubPop int) error

	// Deactivate restores every individual of the subpopulation to visible.
	// The id must match the one recorded by the last Activate; on mismatch,
	// or with no activation outstanding, no visibility changes and a
	// protocol error is returned.
	Deactivate(subPop int) error

	// Name returns the display name of a VSP.
	Name(virtualSubPop int) string

	// ActivatedSubPop returns the subpopulation with an active VSP, or None.
	ActivatedSubPop() int
}

// base carries the user name overrides and the shared activation state every
// splitter variant needs.
type base struct {
	names        []string
	activated    int
	activatedPop Population
}

func newBase(names []string) base {
	return base{names: append([]string(nil), names...), activated: None}
}

func (b *base) ActivatedSubPop() int { return b.activated }

// userName returns the override for vsp, if one was given.
func (b *base) userName(vsp int) (string, bool) {
	if vsp < len(b.names) {
		return b.names[vsp], true
	}
	return "", false
}

func (b *base) checkNames(numVSP int) error {
	if len(b.names) != 0 && len(b.names) != numVSP {
		return fmt.Errorf("%d names given for %d virtual subpopulations", len(b.names), numVSP)
	}
	return nil
}

// markActivated records the activation after visibility has been written.
func (b *base) markActivated(p Population, subPop int) {
	b.activated = subPop
	b.activatedPop = p
}

func (b *base) checkInactive() error {
	if b.activated != None {
		return fmt.Errorf("%w: subpopulation %d still has an active virtual subpopulation", ErrProtocol, b.activated)
	}
	return nil
}

func (b *base) deactivate(subPop int) error {
	if b.activated == None {
		return fmt.Errorf("%w: no virtual subpopulation is active", ErrProtocol)
	}
	if subPop != b.activated {
		return fmt.Errorf("%w: deactivating subpopulation %d but %d is active", ErrProtocol, subPop, b.activated)
	}
	b.activatedPop.ResetVisibility(subPop)
	b.activated = None
	b.activatedPop = nil
	return nil
}

// popChecker is implemented by splitters whose predicates depend on the
// population's shape (information fields, loci, ploidy). Composites run it on
// their children before scanning, so resolution failures surface as errors
// from Size and Activate instead of panics out of Contains.
type popChecker interface {
	checkPop(p Population) error
}

func checkChildren(p Population, splitters []Splitter) error {
	for i, child := range splitters {
		if c, ok := child.(popChecker); ok {
			if err := c.checkPop(p); err != nil {
				return fmt.Errorf("splitter %d: %w", i, err)
			}
		}
	}
	return nil
}

func checkSubPop(p Population, subPop int) error {
	if subPop < 0 || subPop >= p.NumSubPops() {
		return fmt.Errorf("%w: subpopulation %d out of range", ErrProtocol, subPop)
	}
	return nil
}

func checkVSP(virtualSubPop, numVSP int) error {
	if virtualSubPop < 0 || virtualSubPop >= numVSP {
		return fmt.Errorf("%w: virtual subpopulation %d out of range [0, %d)", ErrProtocol, virtualSubPop, numVSP)
	}
	return nil
}

// countWhere scans the full index range of subPop and counts matches.
func countWhere(p Population, subPop int, pred func(ind int) bool) int {
	n := 0
	for ind := 0; ind < p.SubPopSize(subPop); ind++ {
		if pred(ind) {
			n++
		}
	}
	return n
}

// activateWhere writes the predicate result into every visibility flag.
func activateWhere(p Population, subPop int, pred func(ind int) bool) {
	for ind := 0; ind < p.SubPopSize(subPop); ind++ {
		p.SetVisible(subPop, ind, pred(ind))
	}
}

// Activation scopes one activated VSP. Begin is the only producer and Close
// the only consumer, so facade code cannot deactivate the wrong
// subpopulation. A non-virtual id yields a no-op activation, letting callers
// treat whole subpopulations and VSPs uniformly.
type Activation struct {
	splitter Splitter
	subPop   int
	closed   bool
}

func Begin(p Population, s Splitter, id ID) (*Activation, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: invalid id %s", ErrProtocol, id)
	}
	if !id.IsVirtual() {
		if err := checkSubPop(p, id.SubPop()); err != nil {
			return nil, err
		}
		return &Activation{subPop: id.SubPop()}, nil
	}
	if s == nil {
		return nil, fmt.Errorf("%w: no splitter assigned for %s", ErrProtocol, id)
	}
	if err := s.Activate(p, id.SubPop(), id.VirtualSubPop()); err != nil {
		return nil, err
	}
	return &Activation{splitter: s, subPop: id.SubPop()}, nil
}

func (a *Activation) Close() error {
	if a.closed || a.splitter == nil {
		a.closed = true
		return nil
	}
	a.closed = true
	return a.splitter.Deactivate(a.subPop)
}
