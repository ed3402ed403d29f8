package walk

import (
	"github.com/jihwankim/repcheck/pkg/picks"
)

const (
	// defaultUntrackedWidth is the branching factor above which a node
	// stops tracking children. Wide subtrees are assumed effectively
	// infinite, so dedup bookkeeping would only burn memory.
	defaultUntrackedWidth = 1000

	// pickRetries bounds how often a random pick is re-rolled before
	// falling back to a uniform choice among unpruned branches.
	pickRetries = 5
)

// node is one position in the pick tree. A node is pruned once every
// playout through it has been fully explored or filtered out.
type node struct {
	visited     bool
	tracked     bool
	size        uint64
	prunedCount uint64
	pruned      bool
	children    map[int64]*node
}

// PartialTracker walks a seeded random picker through the pick tree,
// skipping branches whose subtrees are already exhausted. Playouts that
// end or get filtered prune their leaf, so the same reply sequence is
// never produced twice along tracked paths.
type PartialTracker struct {
	picker    picks.Picker
	root      *node
	nodes     []*node // nodes[i] answers pick i; len = depth+1
	replies   []int64
	width     uint64
	retryHint int
}

// NewPartialTracker returns a tracker drawing replies from picker.
func NewPartialTracker(picker picks.Picker) *PartialTracker {
	root := &node{}
	return &PartialTracker{
		picker: picker,
		root:   root,
		nodes:  []*node{root},
		width:  defaultUntrackedWidth,
	}
}

func (t *PartialTracker) StartPlayout(depth int) {
	t.nodes = t.nodes[:depth+1]
	t.replies = t.replies[:depth]
}

func (t *PartialTracker) MaybePick(req picks.Request) (int64, error) {
	cur := t.nodes[len(t.nodes)-1]
	if cur.pruned {
		t.retryHint = 0
		return 0, ErrPruned
	}
	if !cur.visited {
		cur.visited = true
		cur.size = req.Size()
		cur.tracked = cur.size != 0 && cur.size <= t.width
		if cur.tracked {
			cur.children = make(map[int64]*node)
		}
	}

	var v int64
	if !cur.tracked {
		v = t.picker.Pick(req)
	} else {
		picked := false
		for i := 0; i < pickRetries; i++ {
			v = t.picker.Pick(req)
			if c := cur.children[v]; c == nil || !c.pruned {
				picked = true
				break
			}
		}
		if !picked {
			var ok bool
			v, ok = t.unprunedChoice(cur, req)
			if !ok {
				t.retryHint = 0
				return 0, ErrPruned
			}
		}
	}

	var child *node
	if cur.tracked {
		child = cur.children[v]
		if child == nil {
			child = &node{}
			cur.children[v] = child
		}
	} else {
		child = &node{}
	}
	t.nodes = append(t.nodes, child)
	t.replies = append(t.replies, v)
	return v, nil
}

// unprunedChoice picks uniformly among the node's unpruned replies,
// drawing the index from the same picker so the stream stays seeded.
func (t *PartialTracker) unprunedChoice(cur *node, req picks.Request) (int64, bool) {
	count := cur.size - cur.prunedCount
	if count == 0 {
		return 0, false
	}
	k := t.picker.Pick(picks.MustRequest(0, int64(count-1)))
	for v := req.Min(); ; v++ {
		if c := cur.children[v]; c == nil || !c.pruned {
			if k == 0 {
				return v, true
			}
			k--
		}
		if v == req.Max() {
			return 0, false
		}
	}
}

func (t *PartialTracker) EndPlayout() bool {
	t.pruneLeaf()
	t.retryHint = 0
	return true
}

func (t *PartialTracker) PrunePlayout(retryDepth int) {
	t.pruneLeaf()
	if retryDepth > len(t.replies) {
		retryDepth = len(t.replies)
	}
	t.retryHint = retryDepth
}

// pruneLeaf marks the current position exhausted and walks upward marking
// every ancestor whose branches are now all pruned.
func (t *PartialTracker) pruneLeaf() {
	i := len(t.nodes) - 1
	leaf := t.nodes[i]
	if leaf.pruned {
		return
	}
	leaf.pruned = true
	for i--; i >= 0; i-- {
		p := t.nodes[i]
		if !p.tracked || p.pruned {
			return
		}
		p.prunedCount++
		if p.prunedCount < p.size {
			return
		}
		p.pruned = true
	}
}

func (t *PartialTracker) NextPlayout() (int, bool) {
	if t.root.pruned {
		return 0, false
	}
	d := t.retryHint
	t.retryHint = 0
	if d > len(t.replies) {
		d = len(t.replies)
	}
	return d, true
}

func (t *PartialTracker) Replies() []int64 {
	out := make([]int64, len(t.replies))
	copy(out, t.replies)
	return out
}

func (t *PartialTracker) Depth() int { return len(t.replies) }
