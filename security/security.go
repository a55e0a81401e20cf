// Package security provides the decryption hook and the resource limits
// applied while loading a document.
package security

import "fmt"

// DataClass identifies the kind of payload being decrypted.
type DataClass int

const (
	DataClassStream DataClass = iota
	DataClassString
	DataClassMetadataStream
)

func (c DataClass) String() string {
	switch c {
	case DataClassStream:
		return "stream"
	case DataClassString:
		return "string"
	case DataClassMetadataStream:
		return "metadata stream"
	default:
		return fmt.Sprintf("DataClass(%d)", int(c))
	}
}

// Handler decrypts string and stream payloads of one indirect object.
type Handler interface {
	IsEncrypted() bool
	Decrypt(objNum, gen int, data []byte, class DataClass) ([]byte, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(objNum, gen int, data []byte, class DataClass) ([]byte, error)

func (f HandlerFunc) IsEncrypted() bool { return true }
func (f HandlerFunc) Decrypt(objNum, gen int, data []byte, class DataClass) ([]byte, error) {
	return f(objNum, gen, data, class)
}

type noEncryptionHandler struct{}

func (noEncryptionHandler) IsEncrypted() bool { return false }
func (noEncryptionHandler) Decrypt(objNum, gen int, data []byte, class DataClass) ([]byte, error) {
	return data, nil
}

// NoopHandler returns a handler that leaves data untouched.
func NoopHandler() Handler { return noEncryptionHandler{} }
