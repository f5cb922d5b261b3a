// Package tario implements a streaming, pull-based TAR decoder.
//
// Unlike a conventional reader that blocks on I/O, the Decoder here is
// driven by the caller: bytes are pushed in with Write, entries come out
// through Next, and the caller must call
// Advance once it is done with an entry's stream before the next one is
// produced. The decoder never buffers the whole archive and tolerates
// arbitrarily chunked input, including splits in the middle of a header
// or a multi-byte field.
//
// Supported formats: classic v7, POSIX USTAR, GNU (long names, old-style
// sparse), and PAX extended headers (per-entry and global). Writing
// archives, multi-volume continuation, PAX sparse formats 0.0/0.1/1.0,
// seeking, and path sanitisation are out of scope.
package tario
