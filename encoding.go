package tario

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// FilenameEncoding selects how the name, linkname, USTAR prefix, and GNU
// long-name/long-link payloads are decoded. uname/gname are always
// UTF-8 and never go through this path.
type FilenameEncoding struct {
	enc encoding.Encoding // nil means UTF-8 passthrough, the common case
}

// UTF8Encoding is the default: tar bytes are taken as UTF-8 verbatim, no
// transcoding performed.
var UTF8Encoding = FilenameEncoding{}

// Latin1Encoding decodes name fields as ISO-8859-1, for archives
// produced by tools that never adopted UTF-8 filenames.
var Latin1Encoding = FilenameEncoding{enc: charmap.ISO8859_1}

// decodeString NUL-trims buf and, if a non-UTF-8 encoding was
// configured, transcodes it to UTF-8. Decoding errors fall back to the
// raw bytes rather than failing the whole header: a mis-decoded
// filename is recoverable in a way a rejected archive is not.
func (fe FilenameEncoding) decodeString(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	if fe.enc == nil {
		return string(buf)
	}
	out, err := fe.enc.NewDecoder().Bytes(buf)
	if err != nil {
		return string(buf)
	}
	return string(out)
}
