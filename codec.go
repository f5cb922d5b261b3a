package tario

import (
	"strconv"
	"strings"
	"time"
)

// decodeNumeric decodes one of the size/mode/uid/gid/devmajor/devminor/
// mtime/real-size fields: octal ASCII, or GNU base-256 when the first
// byte's 0x80 bit is set.
//
// Base-256 interpretation: byte[0]'s 0x40 bit is treated as a negative
// sign, and the remaining bytes (including the low 6 bits of byte[0])
// are a big-endian two's-complement-free magnitude; a negative value is
// produced only when the sign bit was actually set.
func decodeNumeric(buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if buf[0]&0x80 != 0 {
		return decodeBase256(buf)
	}
	return decodeOctal(buf)
}

// decodeOctal skips leading spaces and zeros, then parses octal digits
// until a space, NUL, or the end of the field.
func decodeOctal(buf []byte) (int64, error) {
	// Trim leading/trailing NULs and spaces, and anything after the
	// first terminator, per the classic tar octal-field convention.
	end := len(buf)
	for end > 0 && (buf[end-1] == 0 || buf[end-1] == ' ') {
		end--
	}
	start := 0
	for start < end && (buf[start] == 0 || buf[start] == ' ') {
		start++
	}
	if start == end {
		return 0, nil
	}
	field := buf[start:end]
	// Stop at the first non-octal-digit byte (a stray NUL/space
	// terminator embedded mid-field, as some writers emit).
	for i, c := range field {
		if c < '0' || c > '7' {
			field = field[:i]
			break
		}
	}
	if len(field) == 0 {
		return 0, nil
	}
	v, err := strconv.ParseInt(string(field), 8, 64)
	if err != nil {
		return 0, wrapf(ErrInvalidFormat, "invalid octal field %q", string(field))
	}
	return v, nil
}

// decodeBase256 decodes the GNU large-field extension: byte[0] has its
// 0x80 bit set to flag base-256, its 0x40 bit as the sign, and the
// remaining low 6 bits plus all following bytes are a big-endian
// magnitude.
func decodeBase256(buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	negative := buf[0]&0x40 != 0
	var v uint64
	// First byte contributes only its low 6 bits.
	v = uint64(buf[0] & 0x3f)
	for _, c := range buf[1:] {
		v = v<<8 | uint64(c)
	}
	if negative {
		return -int64(v), nil
	}
	if v > 1<<63-1 {
		return 0, wrapf(ErrInvalidFormat, "base-256 field overflows int64")
	}
	return int64(v), nil
}

// decodePAXRecords parses "<len> <key>=<value>\n" records where <len> is
// the decimal length of the whole record, including its own digits, the
// space, and the trailing newline. Parsing stops cleanly at the end of
// data or at the first malformed record.
func decodePAXRecords(data []byte) map[string]string {
	records := make(map[string]string)
	for len(data) > 0 {
		sp := indexByte(data, ' ')
		if sp <= 0 {
			break
		}
		recLen, err := strconv.Atoi(string(data[:sp]))
		if err != nil || recLen <= sp || recLen > len(data) {
			break
		}
		rec := data[sp+1 : recLen]
		if len(rec) == 0 || rec[len(rec)-1] != '\n' {
			break
		}
		rec = rec[:len(rec)-1]
		eq := indexByte(rec, '=')
		if eq < 0 {
			break
		}
		records[string(rec[:eq])] = string(rec[eq+1:])
		data = data[recLen:]
	}
	return records
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// parseHeader decodes a single 512-byte block. A nil *rawHeader with a
// nil error means "all-zero sentinel block"; callers must check that
// case before treating a nil error as success.
func parseHeader(b *block, opts Options) (*rawHeader, error) {
	if *b == zeroBlock {
		return nil, nil
	}

	stored, err := decodeOctal(b.chksum())
	if err != nil {
		return nil, ErrInvalidChecksum
	}
	computed := computeChecksum(b)
	if computed != stored {
		return nil, ErrInvalidChecksum
	}

	format := FormatV7
	ustar, gnu := isUSTAR(b), isGNU(b)
	switch {
	case ustar:
		format = FormatUSTAR
	case gnu:
		format = FormatGNU
	default:
		if !opts.AllowUnknownFormat {
			return nil, ErrInvalidFormat
		}
	}

	fe := opts.FilenameEncoding
	rh := &rawHeader{}
	rh.Format = format
	rh.Name = fe.decodeString(b.name())
	if mode, err := decodeNumeric(b.mode()); err == nil {
		rh.Mode = mode
	}
	if uid, err := decodeNumeric(b.uid()); err == nil {
		rh.Uid = uid
	}
	if gid, err := decodeNumeric(b.gid()); err == nil {
		rh.Gid = gid
	}
	size, err := decodeNumeric(b.size())
	if err != nil {
		return nil, err
	}
	rh.Size = size
	mtime, err := decodeNumeric(b.mtime())
	if err == nil {
		rh.ModTime = time.Unix(mtime, 0).UTC()
	}
	rh.Type = decodeTypeflag(b.typeflag())
	rh.Linkname = fe.decodeString(b.linkname())

	if ustar || gnu {
		rh.Uname = UTF8Encoding.decodeString(b.uname())
		rh.Gname = UTF8Encoding.decodeString(b.gname())
		if dmaj, err := decodeNumeric(b.devmajor()); err == nil {
			rh.Devmajor = dmaj
		}
		if dmin, err := decodeNumeric(b.devminor()); err == nil {
			rh.Devminor = dmin
		}
	}

	if ustar {
		if prefix := b.prefix(); prefix[0] != 0 {
			rh.Name = fe.decodeString(prefix) + "/" + rh.Name
		}
	}
	if gnu {
		if at, err := decodeNumeric(b.atimeGNU()); err == nil && at != 0 {
			rh.AccessTime = time.Unix(at, 0).UTC()
		}
		if ct, err := decodeNumeric(b.ctimeGNU()); err == nil && ct != 0 {
			rh.ChangeTime = time.Unix(ct, 0).UTC()
		}
	}

	if rh.Type == TypeGNUSparse {
		rh.sparseMap = decodeSparseMap(b.sparse(), 4)
		rh.extended = b.isExtended() != 0
		if realSize, err := decodeNumeric(b.realSize()); err == nil {
			rh.Size = realSize
		}
	}

	if !opts.AllowUnknownFormat && rh.Type == TypeUnknown {
		return nil, ErrUnknownEntryType
	}

	return rh, nil
}

// decodeSparseMap parses up to max (offset,length) pairs of 12-byte
// octal fields each, stopping at the first (0,0) entry.
func decodeSparseMap(buf []byte, max int) []sparseEntry {
	var entries []sparseEntry
	for i := 0; i < max; i++ {
		rec := buf[i*24 : i*24+24]
		off, errO := decodeNumeric(rec[:12])
		length, errL := decodeNumeric(rec[12:])
		if errO != nil || errL != nil || (off == 0 && length == 0) {
			break
		}
		entries = append(entries, sparseEntry{Offset: off, Length: length})
	}
	return entries
}

// trimTrailingSlash reports whether s ends in exactly one or more '/'
// and returns the name without it. Used only for readability at call
// sites; kept tiny on purpose.
func trimTrailingSlash(s string) (string, bool) {
	if strings.HasSuffix(s, "/") {
		return strings.TrimRight(s, "/"), true
	}
	return s, false
}
