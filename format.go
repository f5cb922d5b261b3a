// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tario

// Format represents the on-disk TAR header format.
//
// The original tar format was introduced in Unix V7. Since then, USTAR,
// PAX, and GNU have each extended it in incompatible ways. Format is
// purely informational: it does not change how a Header's fields are
// interpreted once decoded.
type Format int

const (
	// FormatUnknown is the zero value. The decoder does not assign it:
	// a block with neither the USTAR nor the GNU magic is reported as
	// FormatV7.
	FormatUnknown Format = iota
	// FormatV7 is the original Unix V7 tar format: no magic, no prefix,
	// no long names.
	FormatV7
	// FormatUSTAR is the POSIX.1-1988 USTAR format.
	FormatUSTAR
	// FormatPAX is USTAR carrying PAX extended-attribute headers. The
	// decoder does not assign it: a header that had PAX records applied
	// keeps the format of its own block, and its per-entry records are
	// in Header.PAX.
	FormatPAX
	// FormatGNU is the GNU tar format (long names, old-style sparse).
	FormatGNU
)

func (f Format) String() string {
	switch f {
	case FormatV7:
		return "V7"
	case FormatUSTAR:
		return "USTAR"
	case FormatPAX:
		return "PAX"
	case FormatGNU:
		return "GNU"
	default:
		return "<unknown>"
	}
}

// Magics used to identify the two standardised formats.
const (
	magicGNU, versionGNU     = "ustar ", " \x00"
	magicUSTAR, versionUSTAR = "ustar\x00", "00"
)

// Block layout constants, shared by HeaderCodec and the Decoder.
const (
	blockSize  = 512 // size of each block in a tar stream
	nameSize   = 100 // max length of the name field in USTAR/V7
	prefixSize = 155 // max length of the USTAR prefix field
)

// block is a single 512-byte header record. Field accessors below return
// sub-slices at fixed offsets defined by the USTAR/GNU layout.
type block [blockSize]byte

func (b *block) name() []byte      { return b[0:][:100] }
func (b *block) mode() []byte      { return b[100:][:8] }
func (b *block) uid() []byte       { return b[108:][:8] }
func (b *block) gid() []byte       { return b[116:][:8] }
func (b *block) size() []byte      { return b[124:][:12] }
func (b *block) mtime() []byte     { return b[136:][:12] }
func (b *block) chksum() []byte    { return b[148:][:8] }
func (b *block) typeflag() byte    { return b[156] }
func (b *block) linkname() []byte  { return b[157:][:100] }
func (b *block) magic() []byte     { return b[257:][:6] }
func (b *block) version() []byte   { return b[263:][:2] }
func (b *block) uname() []byte     { return b[265:][:32] }
func (b *block) gname() []byte     { return b[297:][:32] }
func (b *block) devmajor() []byte  { return b[329:][:8] }
func (b *block) devminor() []byte  { return b[337:][:8] }
func (b *block) prefix() []byte    { return b[345:][:155] }       // USTAR
func (b *block) atimeGNU() []byte  { return b[345:][:12] }        // GNU
func (b *block) ctimeGNU() []byte  { return b[357:][:12] }        // GNU
func (b *block) sparse() []byte    { return b[386:][:24*4] }      // GNU, 4 entries
func (b *block) isExtended() byte  { return b[482] }              // GNU
func (b *block) realSize() []byte  { return b[483:][:12] }        // GNU
func (b *block) sparseExt() []byte { return b[:24*21] }           // GNU extended sparse block
func (b *block) sparseExtIsExt() byte {
	return b[504] // extended sparse block continuation flag
}

// isUSTAR reports whether b carries the POSIX USTAR magic.
func isUSTAR(b *block) bool {
	return string(b.magic()) == magicUSTAR
}

// isGNU reports whether b carries the GNU magic and version.
func isGNU(b *block) bool {
	return string(b.magic()) == magicGNU && string(b.version()) == versionGNU
}

// blockPadding computes the number of bytes needed to round size up to
// the next block boundary, where 0 <= n < blockSize.
func blockPadding(size int64) (n int64) {
	return -size & (blockSize - 1)
}

// computeChecksum sums the unsigned byte values of b, treating the
// checksum field itself as eight ASCII spaces.
func computeChecksum(b *block) int64 {
	var sum int64
	for i, c := range b {
		if 148 <= i && i < 156 {
			c = ' '
		}
		sum += int64(c)
	}
	return sum
}

// zeroBlock is an all-zero block, used to detect the archive terminator
// sentinel without allocating.
var zeroBlock block
