package compress

type noneCompressor struct{}

func (noneCompressor) Compress(src []byte) ([]byte, error) {
	return append([]byte(nil), src...), nil
}

func (noneCompressor) Decompress(src []byte) ([]byte, error) {
	return append([]byte(nil), src...), nil
}

func (noneCompressor) Name() string { return string(TypeNone) }
