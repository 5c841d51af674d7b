package tile

// ReplacementQueue is a doubly-linked list of resident tiles ordered by
// recency: the head is the most recently touched tile. Trimming frees
// tiles from the tail but never goes past the last tile touched before
// the start of the current frame, so a tile touched this frame is never
// freed regardless of the configured capacity.
type ReplacementQueue struct {
	head  *Tile
	tail  *Tile
	count int

	lastBeforeStartOfFrame *Tile
}

func NewReplacementQueue() *ReplacementQueue {
	return &ReplacementQueue{}
}

func (q *ReplacementQueue) Count() int {
	return q.count
}

// MarkStartOfFrame records the frame boundary. Tiles touched after this
// call are exempt from trimming until the next boundary.
func (q *ReplacementQueue) MarkStartOfFrame() {
	q.lastBeforeStartOfFrame = q.head
}

// MarkTileTouched moves the tile to the head of the queue, inserting it
// if it is not resident yet.
func (q *ReplacementQueue) MarkTileTouched(t *Tile) {
	if q.head == t {
		if t == q.lastBeforeStartOfFrame {
			q.lastBeforeStartOfFrame = t.replacementNext
		}
		return
	}

	q.count++
	if q.head == nil {
		t.replacementPrev = nil
		t.replacementNext = nil
		q.head = t
		q.tail = t
		return
	}

	if t.replacementPrev != nil || t.replacementNext != nil {
		q.remove(t)
	}

	t.replacementPrev = nil
	t.replacementNext = q.head
	q.head.replacementPrev = t
	q.head = t
}

// Trim frees least-recently-touched tiles until the resident count is at
// most maxResident or every remaining candidate was touched this frame.
// Tiles mid-load are skipped but do not stop the walk.
func (q *ReplacementQueue) Trim(maxResident int) {
	tileToTrim := q.tail
	keepTrimming := true
	for keepTrimming && q.lastBeforeStartOfFrame != nil && q.count > maxResident && tileToTrim != nil {
		// Stop after processing the last tile not touched this frame.
		keepTrimming = tileToTrim != q.lastBeforeStartOfFrame

		previous := tileToTrim.replacementPrev
		if tileToTrim.EligibleForUnloading() {
			tileToTrim.FreeResources()
			q.remove(tileToTrim)
		}
		tileToTrim = previous
	}
}

// Clear frees every resident tile and empties the queue.
func (q *ReplacementQueue) Clear() {
	t := q.head
	for t != nil {
		next := t.replacementNext
		t.replacementPrev = nil
		t.replacementNext = nil
		t.FreeResources()
		t = next
	}

	q.head = nil
	q.tail = nil
	q.count = 0
	q.lastBeforeStartOfFrame = nil
}

// ForEach calls fn for every resident tile, most recently touched first.
// fn must not mutate the queue.
func (q *ReplacementQueue) ForEach(fn func(*Tile)) {
	for t := q.head; t != nil; t = t.replacementNext {
		fn(t)
	}
}

func (q *ReplacementQueue) remove(t *Tile) {
	previous := t.replacementPrev
	next := t.replacementNext

	if t == q.lastBeforeStartOfFrame {
		q.lastBeforeStartOfFrame = next
	}

	if t == q.head {
		q.head = next
	} else {
		previous.replacementNext = next
	}

	if t == q.tail {
		q.tail = previous
	} else {
		next.replacementPrev = previous
	}

	t.replacementPrev = nil
	t.replacementNext = nil
	q.count--
}
