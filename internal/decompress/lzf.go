// Package decompress provides the pluggable Decompressor the string
// codec uses for LZF-compressed payloads, plus whole-file input
// decompression for snapshot files shipped gzip/zstd/lz4-compressed.
package decompress

import (
	"fmt"

	lzf "github.com/zhuyie/golzf"
)

// LZF wraps github.com/zhuyie/golzf as the format's default
// Decompressor for the LZF special string encoding.
type LZF struct{}

// Decompress expands compressed into a buffer of exactly
// uncompressedSize bytes.
func (LZF) Decompress(compressed []byte, uncompressedSize int) ([]byte, error) {
	out := make([]byte, uncompressedSize)
	n, err := lzf.Decompress(compressed, out)
	if err != nil {
		return nil, fmt.Errorf("lzf decompress: %w", err)
	}
	if n != uncompressedSize {
		return nil, fmt.Errorf("lzf decompress: got %d bytes, expected %d", n, uncompressedSize)
	}
	return out, nil
}
