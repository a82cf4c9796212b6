// Package guid converts between canonical UUIDs and the 22-character
// compressed identifier form engineering models carry. The compressed
// form packs 128 bits into a 64-character alphabet: the leading byte in
// two characters, then five 3-byte groups in four characters each.
package guid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Alphabet is the 64-character base of compressed identifiers, in
// digit-value order.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// CompressedLen is the length of every compressed identifier.
const CompressedLen = 22

// Compress encodes a UUID in compressed form.
func Compress(u uuid.UUID) string {
	out := make([]byte, 0, CompressedLen)
	out = appendGroup(out, uint32(u[0]), 2)
	for i := 1; i < 16; i += 3 {
		v := uint32(u[i])<<16 | uint32(u[i+1])<<8 | uint32(u[i+2])
		out = appendGroup(out, v, 4)
	}
	return string(out)
}

func appendGroup(dst []byte, v uint32, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, Alphabet[(v>>(6*i))&63])
	}
	return dst
}

// Expand decodes a compressed identifier back into a UUID. It is the
// strict inverse of Compress: wrong length, characters outside the
// alphabet, and an overflowing leading pair are all errors.
func Expand(s string) (uuid.UUID, error) {
	var u uuid.UUID
	if len(s) != CompressedLen {
		return u, fmt.Errorf("compressed id %q: length %d, want %d", s, len(s), CompressedLen)
	}
	head, err := groupValue(s[:2])
	if err != nil {
		return u, fmt.Errorf("compressed id %q: %w", s, err)
	}
	if head > 0xff {
		return u, fmt.Errorf("compressed id %q: leading pair out of byte range", s)
	}
	u[0] = byte(head)
	for i := 0; i < 5; i++ {
		v, err := groupValue(s[2+4*i : 6+4*i])
		if err != nil {
			return uuid.UUID{}, fmt.Errorf("compressed id %q: %w", s, err)
		}
		u[1+3*i] = byte(v >> 16)
		u[2+3*i] = byte(v >> 8)
		u[3+3*i] = byte(v)
	}
	return u, nil
}

func groupValue(s string) (uint32, error) {
	var v uint32
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte(Alphabet, s[i])
		if idx < 0 {
			return 0, fmt.Errorf("character %q not in alphabet", s[i])
		}
		v = v*64 + uint32(idx)
	}
	return v, nil
}

// FromSubject recovers the compressed identifier embedded in a
// synthetic geometry subject IRI. The local name after the last slash
// reads <type>_<uuid hex>_<representation>; the hex may itself be
// underscore-split, so every middle segment joins into the UUID.
func FromSubject(iri string) (string, error) {
	local := iri[strings.LastIndexByte(iri, '/')+1:]
	segs := strings.Split(local, "_")
	if len(segs) < 3 {
		return "", fmt.Errorf("subject %q carries no identifier segment", iri)
	}
	u, err := uuid.Parse(strings.Join(segs[1:len(segs)-1], ""))
	if err != nil {
		return "", fmt.Errorf("subject %q: %w", iri, err)
	}
	return Compress(u), nil
}
