// Package wire implements the codec layer: a growable byte-buffer writer
// and a bounded-slice reader, offering symmetric primitive operations for
// every type in the IDL's primitive value set. Byte order is big-endian
// for every multi-byte field. This layer knows nothing about messages or
// framing — it is purely "value in, bytes out" and back.
package wire

import "errors"

// ErrMalformedMessage is returned when a read would exceed the bounds of
// the underlying slice, or when a decoded value violates a type-level
// invariant (an enum ordinal outside its declared range).
var ErrMalformedMessage = errors.New("wire: malformed message")
