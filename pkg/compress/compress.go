// pkg/compress/compress.go
package compress

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Compressor 压缩算法
type Compressor interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
	Name() string
}

// Factory 创建压缩器
type Factory func() (Compressor, error)

// Type 算法名，同时用于配置
type Type string

const (
	TypeNone   Type = "none"
	TypeSnappy Type = "snappy"
	TypeZstd   Type = "zstd"
	TypeLZ4    Type = "lz4"
)

var ErrUnsupported = errors.New("compress: unsupported type")

var (
	mu        sync.RWMutex
	factories = make(map[Type]Factory)
)

func init() {
	Register(TypeNone, func() (Compressor, error) { return noneCompressor{}, nil })
	Register(TypeSnappy, func() (Compressor, error) { return snappyCompressor{}, nil })
	Register(TypeZstd, func() (Compressor, error) { return newZstdCompressor() })
	Register(TypeLZ4, func() (Compressor, error) { return lz4Compressor{}, nil })
}

// Register 注册（或覆盖）一个算法
func Register(t Type, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[t] = f
}

// New 按名称创建压缩器，空名称等同 none
func New(t Type) (Compressor, error) {
	if t == "" {
		t = TypeNone
	}
	mu.RLock()
	f, ok := factories[t]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
	}
	return f()
}

// List 已注册的算法，按名称排序
func List() []Type {
	mu.RLock()
	defer mu.RUnlock()
	types := make([]Type, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
