// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package split splits input into encoding mode segments.

Segment finds the cheapest assignment of an encoding mode to each
character of the input.  The cost of an assignment is supplied by a
Model, implemented once per symbology; the algorithm itself knows
nothing about any symbology.

The search is a shortest path through a lattice with one node per
character and mode.  Walking the input forwards, the cheapest cost of
encoding the prefix ending at character i in mode m is the cheapest
cost of the prefix ending at i-1 in m plus the cost of character i in
m.  After that, the mode may be switched at the end of character i,
at the price of the Switch cost.  Every node remembers the mode in
which its character is encoded, so walking the back-pointers from the
cheapest final node recovers the assignment.

Costs are integers.  Models express fractional bit costs by scaling
all costs by a common factor.  Of several equally cheap choices the
one listed first in the mode list wins.
*/
package split // import "github.com/unixdj/matrix/split"

import (
	"errors"
	"fmt"
)

// A Mode is an encoding mode of a symbology, identified by a small
// integer chosen by the Model.
type Mode uint8

// A Model describes the costs of encoding characters in modes.
//
// All methods receive a pointer to the scan state S, which is created
// zeroed for each call to Segment and is only modified by Cost.  It
// carries look-ahead caches, such as the end and average cost of the
// current run of digits.
//
// Cost is called for every mode in the mode list for every position,
// in order, before the switch costs for the position are considered.
type Model[S any] interface {
	// Head returns the cost of starting the data in mode m.
	Head(st *S, m Mode) int

	// Switch returns the cost of switching from mode from to mode to.
	Switch(st *S, from, to Mode) int

	// EOD returns the cost of ending the data in mode m.
	EOD(st *S, m Mode) int

	// Cost returns the cost of encoding data[i] in mode m, and
	// whether m can encode it at all.
	Cost(st *S, data []rune, i int, m Mode) (int, bool)
}

// ErrNotEncodable is matched by NotEncodableError.
var ErrNotEncodable = errors.New("split: character not encodable in any mode")

// NotEncodableError reports a character no mode can encode.
type NotEncodableError struct {
	Pos  int  // position in the input
	Rune rune // the character
}

func (e *NotEncodableError) Error() string {
	return fmt.Sprintf("split: character %U at position %d not encodable in any mode", e.Rune, e.Pos)
}

func (e *NotEncodableError) Is(target error) bool { return target == ErrNotEncodable }

// A Result is the outcome of Segment.
type Result struct {
	Modes []Mode // mode of each character
	Cost  int    // total cost
}

// Segment returns the cheapest assignment of modes to the characters
// of data, choosing among modes.  If some character cannot be encoded
// in any of the modes, Segment returns a *NotEncodableError.
func Segment[S any](data []rune, modes []Mode, m Model[S]) (Result, error) {
	n := len(modes)
	if n == 0 || n > 0x100 {
		panic("split: bad number of modes")
	}
	if len(data) == 0 {
		return Result{Modes: []Mode{}}, nil
	}
	var st S
	prev := make([]int, n)
	cur := make([]int, n)
	base := make([]int, n)
	can := make([]bool, n)
	// back[i*n+j] is the index of the mode in which data[i] is
	// encoded on the cheapest path ending at node (i, j).
	back := make([]uint8, len(data)*n)

	for j, mode := range modes {
		prev[j] = m.Head(&st, mode)
	}
	last := len(data) - 1
	for i := range data {
		encodable := false
		for j, mode := range modes {
			c, ok := m.Cost(&st, data, i, mode)
			can[j] = ok
			if ok {
				cur[j] = prev[j] + c
				back[i*n+j] = uint8(j)
				encodable = true
			}
		}
		if !encodable {
			return Result{}, &NotEncodableError{Pos: i, Rune: data[i]}
		}
		if i == last {
			for j, mode := range modes {
				if can[j] {
					cur[j] += m.EOD(&st, mode)
				}
			}
		}
		// Switch modes at the end of data[i].  Only nodes that
		// encode data[i] themselves may be switched from.
		copy(base, cur)
		for j, to := range modes {
			reached := can[j]
			for k, from := range modes {
				if k == j || !can[k] {
					continue
				}
				c := base[k] + m.Switch(&st, from, to)
				if !reached || c < cur[j] {
					cur[j] = c
					back[i*n+j] = uint8(k)
					reached = true
				}
			}
		}
		prev, cur = cur, prev
	}

	best := 0
	for j := 1; j < n; j++ {
		if prev[j] < prev[best] {
			best = j
		}
	}
	r := Result{Modes: make([]Mode, len(data)), Cost: prev[best]}
	for i, j := last, best; i >= 0; i-- {
		j = int(back[i*n+j])
		r.Modes[i] = modes[j]
	}
	return r, nil
}

// Total returns the cost of encoding data with the given assignment of
// modes, computed the same way as by Segment.  It returns false if the
// assignment is invalid.  modes must be the list passed to Segment.
func Total[S any](data []rune, modes, assign []Mode, m Model[S]) (int, bool) {
	if len(assign) != len(data) {
		return 0, false
	}
	if len(data) == 0 {
		return 0, true
	}
	var st S
	cost := m.Head(&st, assign[0])
	for i := range data {
		ok := false
		for _, mode := range modes {
			c, can := m.Cost(&st, data, i, mode)
			if mode == assign[i] {
				if !can {
					return 0, false
				}
				cost += c
				ok = true
			}
		}
		if !ok {
			return 0, false
		}
		if i == len(data)-1 {
			cost += m.EOD(&st, assign[i])
		} else if assign[i+1] != assign[i] {
			cost += m.Switch(&st, assign[i], assign[i+1])
		}
	}
	return cost, true
}

// A Run is a maximal range of characters assigned the same mode.
type Run struct {
	Mode       Mode
	Start, End int // data[Start:End]
}

// Runs collapses an assignment into runs.
func Runs(assign []Mode) []Run {
	var r []Run
	for i, m := range assign {
		if len(r) != 0 && r[len(r)-1].Mode == m {
			r[len(r)-1].End = i + 1
			continue
		}
		r = append(r, Run{m, i, i + 1})
	}
	return r
}

// Switches returns the number of mode switches in an assignment.
func Switches(assign []Mode) int {
	n := 0
	for i := 1; i < len(assign); i++ {
		if assign[i] != assign[i-1] {
			n++
		}
	}
	return n
}
