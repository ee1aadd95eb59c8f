package staking

import (
	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
)

// none marks the absence of a neighbour in the ranking arena.
const none = -1

// rankNode is one agent's slot in the arena. Slots are never freed; a detached
// agent keeps its slot and is relinked on its next stake.
type rankNode struct {
	agent  address.Address
	value  amount.Amount
	prev   int
	next   int
	linked bool
}

// RankEntry is an agent with the aggregate stake it is ranked by.
type RankEntry struct {
	Agent address.Address `json:"agent"`
	Value amount.Amount   `json:"value"`
}

// Ranking orders agents by aggregate stake, highest first. Agents with equal
// stake keep the order in which they reached that value.
//
// The list is an arena of nodes linked by index, so relinking never touches
// more than the neighbours of the moved node.
type Ranking struct {
	nodes []rankNode
	slot  map[address.Address]int
	head  int
	tail  int
	size  int
}

// NewRanking returns an empty ranking.
func NewRanking() *Ranking {
	return &Ranking{
		slot: make(map[address.Address]int),
		head: none,
		tail: none,
	}
}

// RestoreRanking rebuilds a ranking from entries already in rank order.
func RestoreRanking(entries []RankEntry) (*Ranking, error) {
	r := NewRanking()
	for i, e := range entries {
		if e.Value.IsZero() {
			return nil, ErrZeroRankValue
		}
		if r.Contains(e.Agent) {
			return nil, ErrAlreadyRanked
		}
		if i > 0 && e.Value.GreaterThan(entries[i-1].Value) {
			return nil, ErrRankOrder
		}
		n := r.node(e.Agent)
		r.nodes[n].value = e.Value
		r.linkAfter(n, r.tail)
	}
	return r, nil
}

// Clone returns an independent copy.
func (r *Ranking) Clone() *Ranking {
	c := &Ranking{
		nodes: make([]rankNode, len(r.nodes)),
		slot:  make(map[address.Address]int, len(r.slot)),
		head:  r.head,
		tail:  r.tail,
		size:  r.size,
	}
	copy(c.nodes, r.nodes)
	for k, v := range r.slot {
		c.slot[k] = v
	}
	return c
}

// node returns the arena slot of agent, allocating one if needed.
func (r *Ranking) node(agent address.Address) int {
	if n, ok := r.slot[agent]; ok {
		return n
	}
	r.nodes = append(r.nodes, rankNode{agent: agent, prev: none, next: none})
	n := len(r.nodes) - 1
	r.slot[agent] = n
	return n
}

// Len returns the number of ranked agents.
func (r *Ranking) Len() int { return r.size }

// Contains reports whether agent is currently ranked.
func (r *Ranking) Contains(agent address.Address) bool {
	n, ok := r.slot[agent]
	return ok && r.nodes[n].linked
}

// Value returns the stake an agent is ranked by.
func (r *Ranking) Value(agent address.Address) (amount.Amount, error) {
	n, ok := r.slot[agent]
	if !ok || !r.nodes[n].linked {
		return amount.Zero(), ErrNotInRanking
	}
	return r.nodes[n].value, nil
}

// Insert links agent at the position its value earns. The scan starts from
// the head when value is at least halfway between the head and tail values,
// and from the tail otherwise.
func (r *Ranking) Insert(agent address.Address, value amount.Amount) error {
	if value.IsZero() {
		return ErrZeroRankValue
	}
	if r.Contains(agent) {
		return ErrAlreadyRanked
	}
	n := r.node(agent)
	r.nodes[n].value = value

	if r.size == 0 {
		r.linkAfter(n, none)
		return nil
	}

	if r.fromHead(value) {
		// Walk past every entry at or above value; FIFO among ties.
		cur := r.head
		for cur != none && !r.nodes[cur].value.LessThan(value) {
			cur = r.nodes[cur].next
		}
		if cur == none {
			r.linkAfter(n, r.tail)
		} else {
			r.linkAfter(n, r.nodes[cur].prev)
		}
		return nil
	}

	cur := r.tail
	for cur != none && r.nodes[cur].value.LessThan(value) {
		cur = r.nodes[cur].prev
	}
	r.linkAfter(n, cur)
	return nil
}

func (r *Ranking) fromHead(value amount.Amount) bool {
	hi, _ := r.nodes[r.head].value.Div(amount.New(2))
	lo, _ := r.nodes[r.tail].value.Div(amount.New(2))
	mid, err := hi.Add(lo)
	if err != nil {
		return true
	}
	return !value.LessThan(mid)
}

// linkAfter links node n after prev; prev == none makes n the head.
func (r *Ranking) linkAfter(n, prev int) {
	next := r.head
	if prev != none {
		next = r.nodes[prev].next
	}
	r.nodes[n].prev = prev
	r.nodes[n].next = next
	r.nodes[n].linked = true
	if prev == none {
		r.head = n
	} else {
		r.nodes[prev].next = n
	}
	if next == none {
		r.tail = n
	} else {
		r.nodes[next].prev = n
	}
	r.size++
}

// Detach unlinks agent, relinking its neighbours.
func (r *Ranking) Detach(agent address.Address) error {
	n, ok := r.slot[agent]
	if !ok || !r.nodes[n].linked {
		return ErrAlreadyDetached
	}
	prev, next := r.nodes[n].prev, r.nodes[n].next
	if prev == none {
		r.head = next
	} else {
		r.nodes[prev].next = next
	}
	if next == none {
		r.tail = prev
	} else {
		r.nodes[next].prev = prev
	}
	r.nodes[n].prev = none
	r.nodes[n].next = none
	r.nodes[n].linked = false
	r.nodes[n].value = amount.Zero()
	r.size--
	return nil
}

// Reposition moves agent to the place value earns. A zero value detaches the
// agent; an unranked agent with a positive value is inserted.
func (r *Ranking) Reposition(agent address.Address, value amount.Amount) error {
	if r.Contains(agent) {
		if err := r.Detach(agent); err != nil {
			return err
		}
	}
	if value.IsZero() {
		return nil
	}
	return r.Insert(agent, value)
}

// Highest returns the top-ranked agent, or address.Zero when empty.
func (r *Ranking) Highest() address.Address {
	if r.head == none {
		return address.Zero
	}
	return r.nodes[r.head].agent
}

// Lowest returns the bottom-ranked agent, or address.Zero when empty.
func (r *Ranking) Lowest() address.Address {
	if r.tail == none {
		return address.Zero
	}
	return r.nodes[r.tail].agent
}

// RankOf returns the agent at 0-based rank i.
func (r *Ranking) RankOf(i int) (address.Address, error) {
	if i < 0 || i >= r.size {
		return address.Zero, ErrNotInRanking
	}
	cur := r.head
	for ; i > 0; i-- {
		cur = r.nodes[cur].next
	}
	return r.nodes[cur].agent, nil
}

// RankFrom returns the agent offset places below agent.
func (r *Ranking) RankFrom(agent address.Address, offset int) (address.Address, error) {
	n, ok := r.slot[agent]
	if !ok || !r.nodes[n].linked || offset < 0 {
		return address.Zero, ErrNotInRanking
	}
	for ; offset > 0; offset-- {
		n = r.nodes[n].next
		if n == none {
			return address.Zero, ErrNotInRanking
		}
	}
	return r.nodes[n].agent, nil
}

// Top returns up to k entries from the head.
func (r *Ranking) Top(k int) []RankEntry {
	if k > r.size {
		k = r.size
	}
	out := make([]RankEntry, 0, max(k, 0))
	for cur := r.head; cur != none && len(out) < k; cur = r.nodes[cur].next {
		out = append(out, RankEntry{Agent: r.nodes[cur].agent, Value: r.nodes[cur].value})
	}
	return out
}

// Entries returns the whole ranking, highest first.
func (r *Ranking) Entries() []RankEntry { return r.Top(r.size) }
