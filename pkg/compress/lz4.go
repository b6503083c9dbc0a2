package compress

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

var errLZ4Corrupt = errors.New("compress: corrupt lz4 block")

// lz4Compressor 块格式：uvarint(原始长度) + flag(0 原样 / 1 压缩) + 数据
type lz4Compressor struct{}

func (lz4Compressor) Compress(src []byte) ([]byte, error) {
	head := make([]byte, binary.MaxVarintLen64+1)
	n := binary.PutUvarint(head, uint64(len(src)))

	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.Compressor
	size, err := c.CompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if size == 0 || size >= len(src) {
		head[n] = 0
		return append(head[:n+1], src...), nil
	}
	head[n] = 1
	return append(head[:n+1], dst[:size]...), nil
}

func (lz4Compressor) Decompress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, errLZ4Corrupt
	}
	origLen, n := binary.Uvarint(src)
	if n <= 0 || n >= len(src) {
		return nil, errLZ4Corrupt
	}
	flag, body := src[n], src[n+1:]
	if flag == 0 {
		if uint64(len(body)) != origLen {
			return nil, errLZ4Corrupt
		}
		return append([]byte(nil), body...), nil
	}

	dst := make([]byte, origLen)
	size, err := lz4.UncompressBlock(body, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if uint64(size) != origLen {
		return nil, errLZ4Corrupt
	}
	return dst, nil
}

func (lz4Compressor) Name() string { return string(TypeLZ4) }
