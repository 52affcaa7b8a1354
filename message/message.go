// Package message provides the small, shared vocabulary every generated
// service module uses to talk about message identity: peeking the
// leading 32-bit message id (and, for responses, the 32-bit status that
// follows it) out of an already-framed message without running the
// message's own typed decoder.
//
// The client listener uses PeekID to decide whether an inbound message
// is a push notification or an RPC response before it knows which one
// it is; the server dispatch table uses it to route a request to the
// generated handler that owns that id. Neither needs the typed payload
// to make that decision.
package message

import (
	"encoding/binary"
	"errors"
)

// ErrTooShort is returned when a message is shorter than the field being
// peeked at.
var ErrTooShort = errors.New("message: too short to contain a message id")

const (
	idSize     = 4
	statusSize = 4
)

// PeekID reads the message id from the first 4 bytes of an encoded
// message without consuming them.
func PeekID(body []byte) (uint32, error) {
	if len(body) < idSize {
		return 0, ErrTooShort
	}
	return binary.BigEndian.Uint32(body[:idSize]), nil
}

// PeekStatus reads the response status field that immediately follows
// the message id on response messages. The core never interprets this
// value beyond "present and zero on success" — see spec.md §4.3.
func PeekStatus(body []byte) (int32, error) {
	if len(body) < idSize+statusSize {
		return 0, ErrTooShort
	}
	return int32(binary.BigEndian.Uint32(body[idSize : idSize+statusSize])), nil
}

// PutID writes id into the first 4 bytes of dst, which must be at least
// 4 bytes long. It is the encode-side mirror of PeekID, used by code
// that builds a response header in place.
func PutID(dst []byte, id uint32) {
	binary.BigEndian.PutUint32(dst[:idSize], id)
}
