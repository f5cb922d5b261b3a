package tario

import (
	"errors"
	"fmt"
)

// Sentinel errors for the decoder's error taxonomy. Use errors.Is to
// test for these; wrapped variants carry additional context via
// fmt.Errorf's %w rather than a third-party errors library.
var (
	// ErrInvalidChecksum: computed header checksum does not match the
	// stored checksum, and the block is not the all-zero sentinel.
	ErrInvalidChecksum = errors.New("tario: invalid header checksum")

	// ErrInvalidFormat: neither USTAR nor GNU magic, and
	// Options.AllowUnknownFormat is false.
	ErrInvalidFormat = errors.New("tario: invalid tar format")

	// ErrTruncatedArchive: end of input reached while the decoder was
	// not in ReadingHeader/Ended with zero bytes outstanding.
	ErrTruncatedArchive = errors.New("tario: truncated archive")

	// ErrUnknownEntryType: an unrecognised typeflag and
	// Options.AllowUnknownFormat is false.
	ErrUnknownEntryType = errors.New("tario: unknown entry type")

	// ErrPrecondition: internal invariant violated (consume underflow,
	// double advance). Not user-recoverable.
	ErrPrecondition = errors.New("tario: precondition violated")

	// ErrAborted: the entry stream was closed by Decoder.Close while
	// still live.
	ErrAborted = errors.New("tario: aborted")

	// ErrClosed: Write was called on a decoder after Decoder.Close.
	ErrClosed = errors.New("tario: decoder closed")
)

// wrapf wraps err with added context, consistent with the rest of the
// package's error style.
func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}
