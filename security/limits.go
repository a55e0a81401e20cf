package security

// Limits defines resource boundaries for loading untrusted PDFs.
type Limits struct {
	// Maximum source size in bytes. Default: 2 GiB.
	MaxSourceSize int64

	// Maximum decompressed stream size (prevent zip bombs). Default: 100 MB.
	MaxDecompressedSize int64

	// Maximum indirect reference depth when resolving /Length and page trees. Default: 100.
	MaxIndirectDepth int

	// Maximum XRef chain depth (Prev entries). Default: 50.
	MaxXRefDepth int

	// Maximum distance scanned for endstream when /Length is unusable. Default: 50 MB.
	MaxStreamScan int64
}

// DefaultLimits returns a Limits struct with safe default values.
func DefaultLimits() Limits {
	return Limits{
		MaxSourceSize:       2 << 30,
		MaxDecompressedSize: 100 * 1024 * 1024, // 100 MB
		MaxIndirectDepth:    100,
		MaxXRefDepth:        50,
		MaxStreamScan:       50 * 1024 * 1024, // 50 MB
	}
}

// WithDefaults replaces zero fields with their default values.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.MaxSourceSize <= 0 {
		l.MaxSourceSize = d.MaxSourceSize
	}
	if l.MaxDecompressedSize <= 0 {
		l.MaxDecompressedSize = d.MaxDecompressedSize
	}
	if l.MaxIndirectDepth <= 0 {
		l.MaxIndirectDepth = d.MaxIndirectDepth
	}
	if l.MaxXRefDepth <= 0 {
		l.MaxXRefDepth = d.MaxXRefDepth
	}
	if l.MaxStreamScan <= 0 {
		l.MaxStreamScan = d.MaxStreamScan
	}
	return l
}
