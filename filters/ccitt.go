package filters

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/image/ccitt"

	"github.com/wudi/pdfaparser/ir/raw"
)

type ccittDecoder struct{}

func (ccittDecoder) Name() string { return "CCITTFaxDecode" }
func NewCCITTFaxDecoder() Decoder { return ccittDecoder{} }

// Decode expands Group 3 (K = 0) and Group 4 (K < 0) fax data. Mixed
// one and two dimensional Group 3 data (K > 0) is not supported.
func (ccittDecoder) Decode(ctx context.Context, in []byte, params raw.Dictionary) ([]byte, error) {
	k := intParam(params, "K", 0)
	if k > 0 {
		return nil, fmt.Errorf("K=%d: %w", k, UnsupportedError{Filter: "CCITTFaxDecode"})
	}
	mode := ccitt.Group3
	if k < 0 {
		mode = ccitt.Group4
	}
	cols := intParam(params, "Columns", 1728)
	rows := intParam(params, "Rows", 0)
	if rows <= 0 {
		rows = ccitt.AutoDetectHeight
	}
	opts := &ccitt.Options{
		Align:  boolParam(params, "EncodedByteAlign"),
		Invert: boolParam(params, "BlackIs1"),
	}

	var out bytes.Buffer
	r := ccitt.NewReader(bytes.NewReader(in), ccitt.MSB, mode, cols, rows, opts)
	if _, err := io.Copy(&out, r); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func boolParam(params raw.Dictionary, key string) bool {
	if params == nil {
		return false
	}
	v, ok := params.Get(raw.NameLiteral(key))
	if !ok {
		return false
	}
	b, ok := v.(raw.Boolean)
	return ok && b.Value()
}
