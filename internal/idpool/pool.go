// Package idpool tracks the free numeric identifiers of an allocation
// range as a sorted list of disjoint inclusive intervals.
package idpool

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnavailable = errors.New("id not available")
	ErrExhausted   = errors.New("id range exhausted")
)

// Interval is an inclusive range of free ids.
type Interval struct {
	Start int
	End   int
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d]", iv.Start, iv.End)
}

// Pool is not safe for concurrent use.
type Pool struct {
	start int
	end   int
	free  []Interval
}

// New returns a pool in which every id of [start,end] is free.
// An inverted range yields an empty pool.
func New(start, end int) *Pool {
	p := &Pool{start: start, end: end}
	if start <= end {
		p.free = []Interval{{Start: start, End: end}}
	}
	return p
}

// Bounds returns the configured range.
func (p *Pool) Bounds() (start, end int) { return p.start, p.end }

// InRange reports whether id lies within the configured range, free or not.
func (p *Pool) InRange(id int) bool {
	return id >= p.start && id <= p.end
}

// Free returns a copy of the free intervals in ascending order.
func (p *Pool) Free() []Interval {
	return append([]Interval(nil), p.free...)
}

// find returns the index of the interval containing id, or -1.
func (p *Pool) find(id int) int {
	i := sort.Search(len(p.free), func(i int) bool { return p.free[i].End >= id })
	if i < len(p.free) && p.free[i].Start <= id {
		return i
	}
	return -1
}

func (p *Pool) IsFree(id int) bool {
	return p.find(id) >= 0
}

// TryClaim removes id from the pool. It returns false if id is not free.
func (p *Pool) TryClaim(id int) bool {
	i := p.find(id)
	if i < 0 {
		return false
	}
	iv := p.free[i]
	switch {
	case iv.Start == id && iv.End == id:
		p.free = append(p.free[:i], p.free[i+1:]...)
	case iv.Start == id:
		p.free[i].Start++
	case iv.End == id:
		p.free[i].End--
	default:
		p.free = append(p.free, Interval{})
		copy(p.free[i+2:], p.free[i+1:])
		p.free[i] = Interval{Start: iv.Start, End: id - 1}
		p.free[i+1] = Interval{Start: id + 1, End: iv.End}
	}
	return true
}

// Claim is TryClaim for ids the caller requires; unavailability is an error.
func (p *Pool) Claim(id int) error {
	if !p.TryClaim(id) {
		return fmt.Errorf("%w: %d", ErrUnavailable, id)
	}
	return nil
}

// Next returns the smallest free id without claiming it.
func (p *Pool) Next() (int, error) {
	return p.NextFrom(p.start)
}

// NextFrom returns the smallest free id not below floor, without claiming it.
func (p *Pool) NextFrom(floor int) (int, error) {
	i := sort.Search(len(p.free), func(i int) bool { return p.free[i].End >= floor })
	if i == len(p.free) {
		return 0, fmt.Errorf("%w: no free id in [%d,%d]", ErrExhausted, max(p.start, floor), p.end)
	}
	return max(p.free[i].Start, floor), nil
}

// Release returns a claimed id to the pool, merging it with adjacent free
// intervals. It returns false if id is out of range or already free.
func (p *Pool) Release(id int) bool {
	if !p.InRange(id) || p.IsFree(id) {
		return false
	}
	i := sort.Search(len(p.free), func(i int) bool { return p.free[i].Start > id })
	left := i > 0 && p.free[i-1].End == id-1
	right := i < len(p.free) && p.free[i].Start == id+1
	switch {
	case left && right:
		p.free[i-1].End = p.free[i].End
		p.free = append(p.free[:i], p.free[i+1:]...)
	case left:
		p.free[i-1].End = id
	case right:
		p.free[i].Start = id
	default:
		p.free = append(p.free, Interval{})
		copy(p.free[i+1:], p.free[i:])
		p.free[i] = Interval{Start: id, End: id}
	}
	return true
}
