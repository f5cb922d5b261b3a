package tario

import "io"

// EntryStream is a finite, single-pass byte stream: one entry's file
// payload. It is owned by the Decoder while bytes remain —
// the Decoder is the only writer — and becomes invalid once the caller
// signals Advance on the Decoder.
type EntryStream struct {
	chunks    [][]byte
	closed    bool
	discarded bool
	err       error
}

func newEntryStream() *EntryStream {
	return &EntryStream{}
}

// push appends decoded data to the stream. Called only by the Decoder.
// A no-op once Discard has been called: discarded bytes are never
// buffered in the first place.
func (s *EntryStream) push(data []byte) {
	if s.discarded || len(data) == 0 {
		return
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.chunks = append(s.chunks, buf)
}

// closeStream marks the stream as having delivered its full payload.
func (s *EntryStream) closeStream() {
	s.closed = true
}

// abort terminates the stream with err, unblocking any Read that would
// otherwise wait for more data.
func (s *EntryStream) abort(err error) {
	s.err = err
	s.closed = true
	s.chunks = nil
}

// Read implements io.Reader. Before the Decoder has finished delivering
// this entry's payload, Read returns (0, nil) once buffered data is
// exhausted — the caller should Write more input to the Decoder and
// retry, exactly like reading from a non-blocking pipe.
func (s *EntryStream) Read(p []byte) (int, error) {
	for len(s.chunks) > 0 && len(s.chunks[0]) == 0 {
		s.chunks = s.chunks[1:]
	}
	if len(s.chunks) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		if s.closed {
			return 0, io.EOF
		}
		return 0, nil
	}
	n := copy(p, s.chunks[0])
	s.chunks[0] = s.chunks[0][n:]
	return n, nil
}

// Discard tells the Decoder that the caller does not want this entry's
// bytes. Already-buffered bytes are dropped, and the Decoder will not
// buffer any more for this stream — but it still reads and accounts for
// them internally, since they must be skipped to reach the next header.
func (s *EntryStream) Discard() {
	s.discarded = true
	s.chunks = nil
}
