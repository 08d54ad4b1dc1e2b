// Package jsonx is the JSON codec shared by the HTTP layer. Numbers decode
// as json.Number so submitted values survive untouched.
package jsonx

import (
	"io"

	"github.com/bytedance/sonic"
)

var api = sonic.Config{
	UseNumber:        true,
	NoNullSliceOrMap: true,
}.Froze()

func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// Decode reads one JSON value from r into v.
func Decode(r io.Reader, v any) error {
	return api.NewDecoder(r).Decode(v)
}

// Encode writes v to w followed by a newline.
func Encode(w io.Writer, v any) error {
	return api.NewEncoder(w).Encode(v)
}
