package easel

// Checkpoint cache defaults. The budget stays a small constant: each
// checkpoint holds a whole-bitmap snapshot, and the cache exists to cap
// worst-case replay cost at roughly one interval, not to make replay
// free.
const (
	// DefaultCheckpointInterval is how many applied events accumulate
	// before a new checkpoint is taken.
	DefaultCheckpointInterval = 8

	// DefaultCheckpointBudget is the maximum number of checkpoints kept
	// per buffer.
	DefaultCheckpointBudget = 4
)

// checkpoint is a cached whole-bitmap snapshot at a known log position.
// The snapshot represents buffer state after applying events [0, index).
// cost counts the non-undone events at log positions between the
// previous checkpoint (or the start of the log) and this one; it
// approximates the replay work needed if this checkpoint were dropped.
type checkpoint struct {
	index   int
	cost    int
	snap    Snapshot
	invalid bool
}

// checkpointCache is a buffer's ordered checkpoint list. Items are kept
// strictly increasing by index. There is an implicit baseline at index 0
// (the cleared bitmap), which is why restoring below the first
// checkpoint clears instead.
type checkpointCache struct {
	items    []*checkpoint
	budget   int
	interval int
}

func newCheckpointCache(budget, interval int) *checkpointCache {
	return &checkpointCache{budget: budget, interval: interval}
}

// newestIndex returns the log position of the newest checkpoint, or 0 if
// there is none.
func (c *checkpointCache) newestIndex() int {
	if len(c.items) == 0 {
		return 0
	}
	return c.items[len(c.items)-1].index
}

// latestRestorable returns the latest checkpoint at or before log
// position i that still holds valid snapshot data, or nil. Restoring
// from anything newer than the edit would bake the stale pixels in.
func (c *checkpointCache) latestRestorable(i int) *checkpoint {
	for k := len(c.items) - 1; k >= 0; k-- {
		cp := c.items[k]
		if cp.index <= i && !cp.invalid && cp.snap != nil {
			return cp
		}
	}
	return nil
}

// at returns the checkpoint exactly at a log position, or nil.
func (c *checkpointCache) at(index int) *checkpoint {
	for _, cp := range c.items {
		if cp.index == index {
			return cp
		}
		if cp.index > index {
			break
		}
	}
	return nil
}

// invalidateAfter marks every checkpoint past log position p as stale.
// The data is kept: a bounded replay crossing the checkpoint repairs the
// damaged region in place instead of paying for a fresh whole-bitmap
// snapshot.
func (c *checkpointCache) invalidateAfter(p int) {
	for _, cp := range c.items {
		if cp.index > p {
			cp.invalid = true
		}
	}
}

// addCost charges delta to the checkpoint carrying log position p: the
// first one with index > p. Positions at or past the newest checkpoint
// are not charged anywhere; the tail count is derived from the log.
func (c *checkpointCache) addCost(p, delta int) {
	for _, cp := range c.items {
		if cp.index > p {
			cp.cost += delta
			if cp.cost < 0 {
				cp.cost = 0
			}
			return
		}
	}
}

// shiftForInsert renumbers checkpoints after an event was inserted at
// log position p.
func (c *checkpointCache) shiftForInsert(p int) {
	for _, cp := range c.items {
		if cp.index > p {
			cp.index++
		}
	}
}

// shiftForRemove renumbers checkpoints after the event at log position p
// was spliced out, folding any equal-index duplicate forward.
func (c *checkpointCache) shiftForRemove(p int) {
	for _, cp := range c.items {
		if cp.index > p {
			cp.index--
		}
	}
	// Splice equal-index duplicates, folding cost into the survivor.
	for k := 1; k < len(c.items); k++ {
		if c.items[k].index != c.items[k-1].index {
			continue
		}
		dropped := c.items[k-1]
		c.items[k].cost += dropped.cost
		if dropped.snap != nil {
			dropped.snap.Free()
		}
		c.items = append(c.items[:k-1], c.items[k:]...)
		k--
	}
}

// add appends a checkpoint at the end of the log and evicts if the cache
// is over budget. Checkpoints are only ever created at the current log
// end, so the list stays sorted.
func (c *checkpointCache) add(cp *checkpoint) {
	c.items = append(c.items, cp)
	for len(c.items) > c.budget {
		if !c.evictOne() {
			break
		}
	}
}

// evictOne removes the checkpoint with minimal worth, where worth is
// cost / (distanceFromLogEnd + 1): cheap-to-rebuild and old goes first.
// The newest checkpoint is never evicted. The evicted checkpoint's cost
// folds into the next younger one so cost bookkeeping stays conserved.
// Returns false if nothing can be evicted.
func (c *checkpointCache) evictOne() bool {
	if len(c.items) < 2 {
		return false
	}
	end := c.items[len(c.items)-1].index
	victim := -1
	var worst float64
	for k := 0; k < len(c.items)-1; k++ {
		cp := c.items[k]
		worth := float64(cp.cost) / float64(end-cp.index+1)
		if victim == -1 || worth < worst {
			victim = k
			worst = worth
		}
	}
	cp := c.items[victim]
	c.items[victim+1].cost += cp.cost
	if cp.snap != nil {
		cp.snap.Free()
	}
	c.items = append(c.items[:victim], c.items[victim+1:]...)
	return true
}

// totalCost sums the costs of all checkpoints.
func (c *checkpointCache) totalCost() int {
	sum := 0
	for _, cp := range c.items {
		sum += cp.cost
	}
	return sum
}

// memBytes sums the snapshot memory currently held.
func (c *checkpointCache) memBytes() int {
	sum := 0
	for _, cp := range c.items {
		if cp.snap != nil {
			sum += cp.snap.MemBytes()
		}
	}
	return sum
}

// reset frees all snapshots and empties the list.
func (c *checkpointCache) reset() {
	c.freeAll()
	c.items = c.items[:0]
}

// freeAll drops all snapshot data but keeps the bookkeeping so a full
// regeneration can rebuild the snapshots in place.
func (c *checkpointCache) freeAll() {
	for _, cp := range c.items {
		if cp.snap != nil {
			cp.snap.Free()
			cp.snap = nil
		}
		cp.invalid = true
	}
}
