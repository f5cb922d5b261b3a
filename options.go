package tario

// Options configures a Decoder.
type Options struct {
	// FilenameEncoding decodes name, linkname, prefix, and long-name
	// payloads. Zero value is UTF8Encoding.
	FilenameEncoding FilenameEncoding
	// AllowUnknownFormat accepts v7 and other non-USTAR/non-GNU
	// archives without failing on InvalidFormat, and demotes
	// UnknownEntryType from fatal to "surface as TypeUnknown".
	AllowUnknownFormat bool
}

// Option mutates Options; used with New.
type Option func(*Options)

// WithFilenameEncoding overrides the default UTF-8 decoding of name
// fields.
func WithFilenameEncoding(fe FilenameEncoding) Option {
	return func(o *Options) { o.FilenameEncoding = fe }
}

// WithAllowUnknownFormat accepts archives that carry neither the USTAR
// nor the GNU magic, and tolerates unrecognised typeflags.
func WithAllowUnknownFormat(allow bool) Option {
	return func(o *Options) { o.AllowUnknownFormat = allow }
}

func defaultOptions() Options {
	return Options{FilenameEncoding: UTF8Encoding}
}
