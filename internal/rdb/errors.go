package rdb

import "fmt"

// Kind classifies a decoding failure so callers can distinguish fatal
// conditions (abort the whole parse) from recoverable ones (log and
// keep going at the outer level).
type Kind int

const (
	// KindTruncated means a primitive read ran out of input. Fatal.
	KindTruncated Kind = iota
	// KindBadMagic means the file does not start with the expected
	// magic bytes. Fatal.
	KindBadMagic
	// KindUnsupportedVersion means the version field was read but is
	// not made of decimal digits. Fatal.
	KindUnsupportedVersion
	// KindCorrupt means a length or encoding byte could not be
	// interpreted. Recoverable at the container level.
	KindCorrupt
	// KindUnknownType means a value-type tag fell outside the known
	// table. Recoverable.
	KindUnknownType
	// KindDecompressorMissing means a compressed-string tag was hit
	// with no Decompressor configured. Recoverable.
	KindDecompressorMissing
	// KindIO means the input file could not be opened or read at the
	// OS level. Fatal, surfaced to the CLI.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindTruncated:
		return "truncated"
	case KindBadMagic:
		return "bad_magic"
	case KindUnsupportedVersion:
		return "unsupported_version"
	case KindCorrupt:
		return "corrupt"
	case KindUnknownType:
		return "unknown_type"
	case KindDecompressorMissing:
		return "decompressor_missing"
	case KindIO:
		return "io_error"
	default:
		return "unknown"
	}
}

// Error wraps a Kind with context and an optional underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rdb: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("rdb: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, rdb.ErrTruncated) style sentinels work against
// the Kind rather than a specific message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newErr(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Sentinel values usable with errors.Is, one per kind.
var (
	ErrTruncated           = &Error{Kind: KindTruncated}
	ErrBadMagic            = &Error{Kind: KindBadMagic}
	ErrUnsupportedVersion  = &Error{Kind: KindUnsupportedVersion}
	ErrCorrupt             = &Error{Kind: KindCorrupt}
	ErrUnknownType         = &Error{Kind: KindUnknownType}
	ErrDecompressorMissing = &Error{Kind: KindDecompressorMissing}
	ErrIO                  = &Error{Kind: KindIO}
)
