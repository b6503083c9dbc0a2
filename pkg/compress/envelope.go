package compress

import (
	"errors"
	"fmt"
)

// 信封格式：首字节为算法编号，读取方无需知道写入方的配置
var typeIDs = map[Type]byte{
	TypeNone:   0,
	TypeSnappy: 1,
	TypeZstd:   2,
	TypeLZ4:    3,
}

var ErrBadEnvelope = errors.New("compress: bad envelope")

// Codec 写入时使用固定算法，读取时按首字节识别算法
type Codec struct {
	write   Compressor
	writeID byte
	readers map[byte]Compressor
}

// NewCodec 创建信封编解码器
func NewCodec(t Type) (*Codec, error) {
	if t == "" {
		t = TypeNone
	}
	id, ok := typeIDs[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
	}

	readers := make(map[byte]Compressor, len(typeIDs))
	for typ, tid := range typeIDs {
		c, err := New(typ)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s compressor: %w", typ, err)
		}
		readers[tid] = c
	}
	return &Codec{write: readers[id], writeID: id, readers: readers}, nil
}

// Type 写入算法
func (c *Codec) Type() Type {
	return Type(c.write.Name())
}

func (c *Codec) Pack(data []byte) ([]byte, error) {
	body, err := c.write.Compress(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, c.writeID)
	return append(out, body...), nil
}

func (c *Codec) Unpack(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrBadEnvelope
	}
	r, ok := c.readers[data[0]]
	if !ok {
		return nil, fmt.Errorf("%w: unknown algorithm id %d", ErrBadEnvelope, data[0])
	}
	return r.Decompress(data[1:])
}
