package neat

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrPairInUse is returned when inserting an endpoint pair that already has an id.
var ErrPairInUse = errors.New("endpoint pair already has a lineage id")

// pair is an ordered combination of two global endpoint ids.
type pair struct {
	from, to int
}

// startKey is the node-map key of the index-th starting node. Global ids are never
// negative, so these keys cannot collide with a real endpoint pair.
func startKey(index int) pair {
	k := -(index + 1)
	return pair{from: k, to: k}
}

// Tracker assigns population-wide lineage ids to structural mutations. The same
// endpoint pair always receives the same id, and ids are handed out densely from 0.
// One Tracker is shared by every genome of a population; all methods are safe for
// concurrent use.
type Tracker struct {
	mu      sync.Mutex
	nodeIDs map[pair]int // nodes created by splitting an edge, plus starting nodes
	connIDs map[pair]int // connections
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		nodeIDs: make(map[pair]int),
		connIDs: make(map[pair]int),
	}
}

// assign returns the id for k, minting the next dense id if k is new.
func assign(ids map[pair]int, k pair) int {
	if id, ok := ids[k]; ok {
		return id
	}
	id := len(ids)
	ids[k] = id
	return id
}

// StartNodeID returns the id of the index-th input/output node. Every genome of the
// population shares these ids regardless of creation order.
func (t *Tracker) StartNodeID(index int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return assign(t.nodeIDs, startKey(index))
}

// NodeID returns the id of the node created by splitting the edge from -> to.
func (t *Tracker) NodeID(from, to int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return assign(t.nodeIDs, pair{from, to})
}

// ConnectionID returns the id of the connection from -> to.
func (t *Tracker) ConnectionID(from, to int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return assign(t.connIDs, pair{from, to})
}

// LookupNodeID returns the split id of from -> to without minting one.
func (t *Tracker) LookupNodeID(from, to int) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.nodeIDs[pair{from, to}]
	return id, ok
}

// LookupConnectionID returns the connection id of from -> to without minting one.
func (t *Tracker) LookupConnectionID(from, to int) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.connIDs[pair{from, to}]
	return id, ok
}

// AddNodeID mints a node id for a pair that must not have one yet.
func (t *Tracker) AddNodeID(from, to int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.nodeIDs[pair{from, to}]; ok {
		return NoID, fmt.Errorf("node (%d,%d): %w", from, to, ErrPairInUse)
	}
	return assign(t.nodeIDs, pair{from, to}), nil
}

// AddConnectionID mints a connection id for a pair that must not have one yet.
func (t *Tracker) AddConnectionID(from, to int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.connIDs[pair{from, to}]; ok {
		return NoID, fmt.Errorf("connection (%d,%d): %w", from, to, ErrPairInUse)
	}
	return assign(t.connIDs, pair{from, to}), nil
}

// NumNodeIDs returns how many node ids have been assigned.
func (t *Tracker) NumNodeIDs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodeIDs)
}

// NumConnectionIDs returns how many connection ids have been assigned.
func (t *Tracker) NumConnectionIDs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.connIDs)
}

// LineageRecord is one assigned id and the endpoint pair it belongs to.
type LineageRecord struct {
	From, To, ID int
}

// TrackerState is a serialisable copy of a tracker.
type TrackerState struct {
	Nodes       []LineageRecord
	Connections []LineageRecord
}

// State returns the tracker contents ordered by id.
func (t *Tracker) State() TrackerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TrackerState{Nodes: records(t.nodeIDs), Connections: records(t.connIDs)}
}

func records(ids map[pair]int) []LineageRecord {
	out := make([]LineageRecord, 0, len(ids))
	for k, id := range ids {
		out = append(out, LineageRecord{From: k.from, To: k.to, ID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RestoreTracker rebuilds a tracker from State output. Ids must be exactly 0..n-1.
func RestoreTracker(state TrackerState) (*Tracker, error) {
	t := NewTracker()
	if err := restoreIDs(t.nodeIDs, state.Nodes); err != nil {
		return nil, fmt.Errorf("restore node ids: %w", err)
	}
	if err := restoreIDs(t.connIDs, state.Connections); err != nil {
		return nil, fmt.Errorf("restore connection ids: %w", err)
	}
	return t, nil
}

func restoreIDs(ids map[pair]int, recs []LineageRecord) error {
	seen := make([]bool, len(recs))
	for _, r := range recs {
		if r.ID < 0 || r.ID >= len(recs) || seen[r.ID] {
			return fmt.Errorf("id %d is not dense in 0..%d", r.ID, len(recs)-1)
		}
		k := pair{r.From, r.To}
		if _, ok := ids[k]; ok {
			return fmt.Errorf("pair (%d,%d): %w", r.From, r.To, ErrPairInUse)
		}
		seen[r.ID] = true
		ids[k] = r.ID
	}
	return nil
}
