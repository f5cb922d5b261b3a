package tario

import "io"

// state is one of the Decoder's cooperative-coroutine states.
type state int

const (
	stateReadingHeader state = iota
	stateFileData
	statePadding
	stateGnuLongName
	stateGnuLongLink
	statePaxExtension
	stateSkipExtension // GNU multi-volume continuation payload, discarded
	stateSparseExtended
	stateSparseData
	stateEnded
)

// Entry is a resolved Header paired with its payload stream.
type Entry struct {
	Header Header
	Stream *EntryStream
}

// Decoder is the TAR state machine. The caller drives it with
// Write/CloseInput and unlocks it with Advance; Next polls for the
// next produced Entry. A Decoder is not safe for concurrent use — it is
// a single-threaded cooperative state machine by design.
type Decoder struct {
	opts Options
	queue byteQueue
	ext   *extensionStore

	state state

	// current carries the raw header across an extension/sparse state
	// that spans multiple step() calls.
	current        *rawHeader
	pendingExtKind extensionKind

	entryRemaining   int64
	paddingRemaining int64

	sparseInfo          []sparseEntry
	sparseRecon         *sparseReconstructor
	sparseDataRemaining int64

	locked       bool
	pendingEntry *Entry

	inputEnded bool
	closed     bool
	finished   bool

	err         error // terminal error, visible once unlocked
	deferredErr error // terminal error pending delivery to err on Advance
}

// New constructs a Decoder. With no options, filenames are decoded as
// UTF-8 and archives that are neither USTAR nor GNU are rejected.
func New(opts ...Option) *Decoder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Decoder{opts: o, ext: newExtensionStore()}
}

// Write appends chunk to the input and runs the decoder as far as
// possible. The returned bool is a backpressure hint: true means the
// decoder is locked awaiting Advance and callers should hold off on
// further writes, though ignoring the hint is safe (queues are
// unbounded in principle). A non-nil error is terminal; subsequent
// calls return the same error without further processing.
func (d *Decoder) Write(chunk []byte) (bool, error) {
	if d.closed {
		return false, ErrClosed
	}
	if d.err != nil {
		return d.locked, d.err
	}
	d.queue.append(chunk)
	d.run()
	return d.locked, d.err
}

// CloseInput marks the input exhausted and runs the decoder to drain
// whatever can still be processed. If the archive ends mid-header or
// mid-entry, it returns ErrTruncatedArchive; a clean archive (terminator
// block seen, or parked cleanly between entries) returns nil.
func (d *Decoder) CloseInput() error {
	if d.inputEnded {
		return d.err
	}
	d.inputEnded = true
	d.run()
	if !d.cleanEOF() {
		return d.fail(ErrTruncatedArchive)
	}
	return d.err
}

// Advance signals that the caller is done with the most recently
// produced entry — whether or not its stream was fully drained — and
// unlocks the decoder to continue toward the next one. Calling Advance
// when no entry is pending (for example, twice for the same entry)
// panics with ErrPrecondition; after Close it is a no-op.
func (d *Decoder) Advance() {
	if d.pendingEntry == nil {
		if d.closed {
			return
		}
		panic(wrapf(ErrPrecondition, "Advance called with no pending entry"))
	}
	d.pendingEntry = nil
	d.locked = false
	if d.deferredErr != nil {
		d.err = d.deferredErr
		d.deferredErr = nil
	}
	if !d.closed {
		d.run()
	}
}

// Close cancels decoding: buffered input is discarded, a live entry
// stream (if any) is closed with ErrAborted, and the decoder moves to
// its terminal state. All outstanding behavior becomes a no-op.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.pendingEntry != nil && !d.pendingEntry.Stream.closed {
		d.pendingEntry.Stream.abort(ErrAborted)
	}
	d.queue.clear()
	d.sparseRecon = nil
	d.pendingEntry = nil
	d.locked = false
	d.state = stateEnded
	return nil
}

// Next polls for the next produced entry. It returns:
//   - (entry, nil) if an entry is pending (repeated calls before Advance
//     return the same entry);
//   - (nil, nil) if more input is needed — call Write, or CloseInput if
//     there is none left;
//   - (nil, io.EOF) once the terminator block has been seen and no entry
//     is pending;
//   - (nil, err) for any terminal decode error.
func (d *Decoder) Next() (*Entry, error) {
	if d.pendingEntry != nil {
		return d.pendingEntry, nil
	}
	if d.err != nil {
		return nil, d.err
	}
	if d.state == stateEnded {
		return nil, io.EOF
	}
	return nil, nil
}

// cleanEOF reports whether the decoder is parked at a point where
// running out of input is not truncation: either already Ended, or
// sitting in ReadingHeader with no partially-consumed entry/extension
// and, unless locked awaiting Advance, no partial header bytes queued.
func (d *Decoder) cleanEOF() bool {
	if d.state == stateEnded {
		return true
	}
	return d.state == stateReadingHeader &&
		(d.locked || d.queue.len() == 0) &&
		d.entryRemaining == 0 &&
		d.paddingRemaining == 0 &&
		d.sparseDataRemaining == 0
}

// fail transitions to Ended and records err: if an entry stream is
// live, err is delivered there first and deferred to Write/Next's main
// sink until the caller calls Advance; otherwise it is delivered to the
// main sink immediately. Either way, fail's own return value is the
// error that actually occurred — CloseInput uses this to answer
// synchronously regardless of whether a stream happened to be live at
// the time.
func (d *Decoder) fail(err error) error {
	if d.err != nil {
		return d.err
	}
	if d.deferredErr != nil {
		return d.deferredErr
	}
	if d.pendingEntry != nil && !d.pendingEntry.Stream.closed {
		d.pendingEntry.Stream.abort(err)
		d.deferredErr = err
	} else {
		d.err = err
	}
	d.state = stateEnded
	d.queue.clear()
	return err
}

// run drives step() until no further progress is possible: the queue
// is short of what the current state needs, or the decoder is locked in
// ReadingHeader awaiting Advance.
func (d *Decoder) run() {
	for d.step() {
	}
}

// step attempts one unit of progress and reports whether it made any.
func (d *Decoder) step() bool {
	switch d.state {
	case stateReadingHeader:
		return d.stepReadingHeader()
	case stateFileData:
		return d.stepFileData()
	case statePadding:
		return d.stepPadding()
	case stateGnuLongName, stateGnuLongLink, statePaxExtension, stateSkipExtension:
		return d.stepExtensionPayload()
	case stateSparseExtended:
		return d.stepSparseExtended()
	case stateSparseData:
		return d.stepSparseData()
	case stateEnded:
		return false
	default:
		return false
	}
}

func (d *Decoder) stepReadingHeader() bool {
	if d.locked {
		return false
	}
	if !d.queue.has(blockSize) {
		return false
	}
	raw := d.queue.consume(blockSize)
	var blk block
	copy(blk[:], raw)

	rh, err := parseHeader(&blk, d.opts)
	if err != nil {
		d.fail(err)
		return true
	}
	if rh == nil {
		d.finished = true
		d.state = stateEnded
		return true
	}

	d.paddingRemaining = blockPadding(rh.Size)

	switch rh.Type {
	case TypeGNULongName:
		d.beginExtension(rh, extLongName, stateGnuLongName)
	case TypeGNULongLink:
		d.beginExtension(rh, extLongLink, stateGnuLongLink)
	case TypeXHeader:
		d.beginExtension(rh, extPAXLocal, statePaxExtension)
	case TypeXGlobalHeader:
		d.beginExtension(rh, extPAXGlobal, statePaxExtension)
	case TypeGNUMultiVol:
		d.beginExtension(rh, extSkip, stateSkipExtension)
	case TypeGNUSparse:
		d.ext.apply(&rh.Header)
		d.sparseInfo = rh.sparseMap
		if rh.extended {
			d.current = rh
			d.state = stateSparseExtended
		} else {
			d.setupSparseEntry(rh)
		}
	default:
		d.ext.apply(&rh.Header)
		d.emitEntry(rh)
	}
	return true
}

func (d *Decoder) beginExtension(rh *rawHeader, kind extensionKind, next state) {
	d.ext.begin(rh.Size)
	d.current = rh
	d.pendingExtKind = kind
	d.state = next
}

// emitEntry produces a regular (non-sparse) Entry and locks the
// decoder.
func (d *Decoder) emitEntry(rh *rawHeader) {
	d.entryRemaining = rh.Size
	stream := newEntryStream()
	d.pendingEntry = &Entry{Header: rh.Header, Stream: stream}
	d.locked = true

	if d.entryRemaining == 0 {
		stream.closeStream()
		d.advancePastData()
	} else {
		d.state = stateFileData
	}
}

// advancePastData transitions to Padding if any is owed, else straight
// back to ReadingHeader (still subject to the lock check there).
func (d *Decoder) advancePastData() {
	if d.paddingRemaining > 0 {
		d.state = statePadding
	} else {
		d.state = stateReadingHeader
	}
}

func (d *Decoder) stepFileData() bool {
	if d.entryRemaining == 0 {
		d.pendingEntry.Stream.closeStream()
		d.advancePastData()
		return true
	}
	avail := d.queue.len()
	if avail == 0 {
		return false
	}
	n := d.entryRemaining
	if avail < n {
		n = avail
	}
	data := d.queue.consume(n)
	d.pendingEntry.Stream.push(data)
	d.entryRemaining -= n
	if d.entryRemaining == 0 {
		d.pendingEntry.Stream.closeStream()
		d.advancePastData()
	}
	return true
}

func (d *Decoder) stepPadding() bool {
	if d.paddingRemaining == 0 {
		d.state = stateReadingHeader
		return true
	}
	avail := d.queue.len()
	if avail == 0 {
		return false
	}
	n := d.paddingRemaining
	if avail < n {
		n = avail
	}
	d.queue.consume(n) // padding is always discarded, never surfaced
	d.paddingRemaining -= n
	if d.paddingRemaining == 0 {
		d.state = stateReadingHeader
	}
	return true
}

func (d *Decoder) stepExtensionPayload() bool {
	if d.ext.accumRemaining == 0 {
		if d.state != stateSkipExtension {
			d.ext.finalise(d.pendingExtKind, d.opts.FilenameEncoding)
		}
		d.current = nil
		d.advancePastData()
		return true
	}
	avail := d.queue.len()
	if avail == 0 {
		return false
	}
	n := d.ext.accumRemaining
	if avail < n {
		n = avail
	}
	data := d.queue.consume(n)
	d.ext.feed(data)
	return true
}

func (d *Decoder) stepSparseExtended() bool {
	if !d.queue.has(blockSize) {
		return false
	}
	raw := d.queue.consume(blockSize)
	var blk block
	copy(blk[:], raw)

	entries := decodeSparseMap(blk.sparseExt(), 21)
	d.sparseInfo = append(d.sparseInfo, entries...)
	if blk.sparseExtIsExt() != 0 {
		return true
	}
	d.setupSparseEntry(d.current)
	return true
}

// setupSparseEntry finalises the sparse map into a packed-data byte
// count, constructs the reconstructor, and emits the reconstructed
// file as a regular Entry.
func (d *Decoder) setupSparseEntry(rh *rawHeader) {
	var total int64
	for _, e := range d.sparseInfo {
		total += e.Length
	}
	d.sparseDataRemaining = total
	d.paddingRemaining = blockPadding(total)

	rh.Header.Type = TypeReg
	stream := newEntryStream()
	d.pendingEntry = &Entry{Header: rh.Header, Stream: stream}
	d.sparseRecon = newSparseReconstructor(d.sparseInfo, rh.Header.Size, stream.push)
	d.locked = true

	d.sparseInfo = nil
	d.current = nil

	if d.sparseDataRemaining == 0 {
		d.sparseRecon.end()
		stream.closeStream()
		d.sparseRecon = nil
		d.advancePastData()
	} else {
		d.state = stateSparseData
	}
}

func (d *Decoder) stepSparseData() bool {
	if d.sparseDataRemaining == 0 {
		d.sparseRecon.end()
		d.pendingEntry.Stream.closeStream()
		d.sparseRecon = nil
		d.advancePastData()
		return true
	}
	avail := d.queue.len()
	if avail == 0 {
		return false
	}
	n := d.sparseDataRemaining
	if avail < n {
		n = avail
	}
	data := d.queue.consume(n)
	d.sparseRecon.push(data)
	d.sparseDataRemaining -= n
	return true
}
