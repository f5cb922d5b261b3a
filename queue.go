package tario

// byteQueue is an append-only chained-buffer FIFO. Writers
// append chunks by reference; readers ask whether N bytes are available
// and, if so, consume them as a single contiguous region. A request that
// is already contiguous in the head node is returned without copying;
// only requests that straddle a node boundary allocate.
type byteQueue struct {
	nodes  [][]byte // pending chunks, in FIFO order
	off    int      // read offset into nodes[0]
	length int64    // total unconsumed bytes across all nodes
}

// append adds chunk to the tail of the queue. Ownership of chunk
// transfers to the queue; the caller must not mutate it afterwards.
func (q *byteQueue) append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	q.nodes = append(q.nodes, chunk)
	q.length += int64(len(chunk))
}

// len reports the number of unconsumed bytes currently queued.
func (q *byteQueue) len() int64 {
	return q.length
}

// has reports whether at least n bytes are queued.
func (q *byteQueue) has(n int64) bool {
	return q.length >= n
}

// consume removes and returns exactly n bytes from the front of the
// queue, in order. Panics with ErrPrecondition if n exceeds len(); this
// is an internal invariant violation, never a user-facing condition
// (the Decoder always checks has(n) first).
func (q *byteQueue) consume(n int64) []byte {
	if n < 0 || n > q.length {
		panic(wrapf(ErrPrecondition, "consume(%d) exceeds queue length %d", n, q.length))
	}
	if n == 0 {
		return nil
	}

	head := q.nodes[0]
	avail := int64(len(head)) - int64(q.off)
	if avail >= n {
		out := head[q.off : int64(q.off)+n]
		q.off += int(n)
		q.length -= n
		if int64(q.off) == int64(len(head)) {
			q.advanceNode()
		}
		return out
	}

	out := make([]byte, n)
	written := int64(0)
	for written < n {
		head = q.nodes[0]
		avail = int64(len(head)) - int64(q.off)
		take := n - written
		if take > avail {
			take = avail
		}
		copy(out[written:], head[q.off:int64(q.off)+take])
		written += take
		q.off += int(take)
		if int64(q.off) == int64(len(head)) {
			q.advanceNode()
		}
	}
	q.length -= n
	return out
}

// advanceNode drops the fully-consumed head node.
func (q *byteQueue) advanceNode() {
	q.nodes[0] = nil // release the reference promptly
	q.nodes = q.nodes[1:]
	q.off = 0
}

// clear releases all queued regions.
func (q *byteQueue) clear() {
	q.nodes = nil
	q.off = 0
	q.length = 0
}
