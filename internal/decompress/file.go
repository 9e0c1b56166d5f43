package decompress

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// WrapInput peeks at r's leading bytes and, if they match a known
// compressed-file magic, returns a reader that transparently
// decompresses the rest of the stream. A snapshot shipped plain (magic
// "REDIS") passes through unchanged.
func WrapInput(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek input header: %w", err)
	}

	switch {
	case hasPrefix(head, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return gz, nil

	case hasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		return zr, nil

	case hasPrefix(head, lz4Magic):
		return lz4.NewReader(br), nil

	default:
		return br, nil
	}
}

func hasPrefix(head, magic []byte) bool {
	if len(head) < len(magic) {
		return false
	}
	for i := range magic {
		if head[i] != magic[i] {
			return false
		}
	}
	return true
}
