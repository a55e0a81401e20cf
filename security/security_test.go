package security

import (
	"bytes"
	"testing"
)

func TestNoopHandler(t *testing.T) {
	h := NoopHandler()
	if h.IsEncrypted() {
		t.Fatalf("noop handler reports encryption")
	}
	in := []byte("data")
	out, err := h.Decrypt(1, 0, in, DataClassStream)
	if err != nil || !bytes.Equal(in, out) {
		t.Fatalf("Decrypt = %q, %v", out, err)
	}
}

func TestHandlerFunc(t *testing.T) {
	var gotNum, gotGen int
	var gotClass DataClass
	h := HandlerFunc(func(num, gen int, data []byte, class DataClass) ([]byte, error) {
		gotNum, gotGen, gotClass = num, gen, class
		return bytes.ToUpper(data), nil
	})
	out, err := h.Decrypt(7, 2, []byte("abc"), DataClassString)
	if err != nil || string(out) != "ABC" {
		t.Fatalf("Decrypt = %q, %v", out, err)
	}
	if gotNum != 7 || gotGen != 2 || gotClass != DataClassString {
		t.Fatalf("handler saw %d %d %v", gotNum, gotGen, gotClass)
	}
}

func TestLimitsWithDefaults(t *testing.T) {
	l := Limits{MaxStreamScan: 10}.WithDefaults()
	if l.MaxStreamScan != 10 {
		t.Fatalf("explicit limit overwritten: %d", l.MaxStreamScan)
	}
	if l.MaxIndirectDepth != DefaultLimits().MaxIndirectDepth || l.MaxSourceSize != DefaultLimits().MaxSourceSize {
		t.Fatalf("defaults not applied: %+v", l)
	}
}
