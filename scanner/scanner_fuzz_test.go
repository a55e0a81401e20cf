package scanner

import "testing"

func FuzzScanner(f *testing.F) {
	f.Add([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"))
	f.Add([]byte("1 0 obj\n<< /Length 3 >>\nstream\nabc\nendstream\nendobj"))
	f.Add([]byte("xref\n0 1\n0000000000 65535 f\r\n"))
	f.Add([]byte("(Hello \\(World\\))"))

	f.Fuzz(func(t *testing.T, data []byte) {
		s := NewBytes(data, Config{WindowSize: 16, Lookback: 32})
		for !s.EOF() {
			before := s.Position()
			s.SkipSpaces()
			if _, err := s.ReadToken(); err != nil {
				break
			}
			if s.Position() == before {
				if _, err := s.Read(); err != nil {
					break
				}
			}
		}
		if s.Position() > s.Len() {
			t.Fatalf("cursor %d beyond source length %d", s.Position(), s.Len())
		}
	})
}
