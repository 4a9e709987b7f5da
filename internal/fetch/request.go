// Package fetch tracks the lifecycle of one asynchronous read: the
// idle/loading/success/failed tri-state plus the tag that lets a unit
// ignore results it no longer cares about.
package fetch

import (
	"fmt"

	"github.com/google/uuid"
)

// State is the lifecycle of a Request.
type State int

const (
	Idle State = iota
	Loading
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Tag identifies one outstanding read: the unit instance that issued it and
// the generation it belongs to.
type Tag struct {
	Unit uuid.UUID
	Gen  uint64
}

// Request is the per-read state owned by one unit. The zero value is Idle.
//
// Success and Failed are only reachable from Loading, and only by the tag
// returned from the most recent Begin. Anything else is a stale result.
type Request struct {
	unit  uuid.UUID
	gen   uint64
	state State
	err   error
}

// NewRequest returns an idle request owned by unit.
func NewRequest(unit uuid.UUID) Request {
	return Request{unit: unit}
}

// Begin enters Loading, clears any previous error and returns the tag the
// result must carry.
func (r *Request) Begin() Tag {
	r.gen++
	r.state = Loading
	r.err = nil
	return Tag{Unit: r.unit, Gen: r.gen}
}

// Current reports whether tag belongs to the outstanding read.
func (r *Request) Current(tag Tag) bool {
	return r.state == Loading && tag.Unit == r.unit && tag.Gen == r.gen
}

// Succeed resolves the outstanding read. It returns false, changing nothing,
// for a stale tag.
func (r *Request) Succeed(tag Tag) bool {
	if !r.Current(tag) {
		return false
	}
	r.state = Success
	return true
}

// Fail resolves the outstanding read with err. It returns false, changing
// nothing, for a stale tag.
func (r *Request) Fail(tag Tag, err error) bool {
	if !r.Current(tag) {
		return false
	}
	r.state = Failed
	r.err = err
	return true
}

// Resolve calls Succeed or Fail depending on err.
func (r *Request) Resolve(tag Tag, err error) bool {
	if err != nil {
		return r.Fail(tag, err)
	}
	return r.Succeed(tag)
}

func (r Request) State() State  { return r.state }
func (r Request) Loading() bool { return r.state == Loading }
func (r Request) Err() error    { return r.err }
