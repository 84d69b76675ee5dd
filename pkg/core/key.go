package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies a row. It is an immutable ordered sequence of integer
// and text parts, comparable with ==, and usable directly as a map key.
//
// The zero Key has no parts and never identifies a row.
type Key struct {
	enc string
}

// NewIntKey returns a single-part integer key.
func NewIntKey(v int64) Key {
	s := strconv.FormatInt(v, 10)
	return Key{enc: "i" + strconv.Itoa(len(s)) + ":" + s}
}

// NewTextKey returns a single-part text key.
func NewTextKey(s string) Key {
	return Key{enc: "t" + strconv.Itoa(len(s)) + ":" + s}
}

// ComposeKeys concatenates the parts of the given keys into one
// composite key, in argument order.
func ComposeKeys(keys ...Key) Key {
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k.enc)
	}
	return Key{enc: b.String()}
}

// IsZero reports whether the key has no parts.
func (k Key) IsZero() bool { return k.enc == "" }

// Len returns the number of parts.
func (k Key) Len() int {
	n := 0
	for rest := k.enc; rest != ""; n++ {
		_, _, tail, ok := cutPart(rest)
		if !ok {
			break
		}
		rest = tail
	}
	return n
}

// Int returns the i-th part as an integer. Text parts and out-of-range
// indexes yield 0.
func (k Key) Int(i int) int64 {
	tag, payload, ok := k.part(i)
	if !ok || tag != 'i' {
		return 0
	}
	v, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Text returns the i-th part as text. Integer parts yield their decimal
// form; out-of-range indexes yield "".
func (k Key) Text(i int) string {
	_, payload, ok := k.part(i)
	if !ok {
		return ""
	}
	return payload
}

// IsIntPart reports whether the i-th part is an integer part.
func (k Key) IsIntPart(i int) bool {
	tag, _, ok := k.part(i)
	return ok && tag == 'i'
}

// String returns a human-readable form with parts joined by "|".
func (k Key) String() string {
	var parts []string
	rest := k.enc
	for rest != "" {
		_, payload, tail, ok := cutPart(rest)
		if !ok {
			break
		}
		parts = append(parts, payload)
		rest = tail
	}
	return strings.Join(parts, "|")
}

// Encode returns the key's compact wire form, suitable for persisting a
// composite key in a single database column. DecodeKey reverses it.
func (k Key) Encode() string { return k.enc }

// DecodeKey parses the wire form produced by Encode.
func DecodeKey(s string) (Key, error) {
	rest := s
	for rest != "" {
		_, _, tail, ok := cutPart(rest)
		if !ok {
			return Key{}, fmt.Errorf("malformed key encoding %q", s)
		}
		rest = tail
	}
	return Key{enc: s}, nil
}

// part returns the tag and payload of the i-th encoded part.
func (k Key) part(i int) (byte, string, bool) {
	rest := k.enc
	for idx := 0; rest != ""; idx++ {
		tag, payload, tail, ok := cutPart(rest)
		if !ok {
			break
		}
		if idx == i {
			return tag, payload, true
		}
		rest = tail
	}
	return 0, "", false
}

// cutPart splits the first encoded part off s. Parts are written as
// <tag><len>:<payload> where tag is 'i' or 't' and len is the payload
// byte length, so text payloads may contain any byte.
func cutPart(s string) (tag byte, payload, rest string, ok bool) {
	if len(s) < 3 {
		return 0, "", "", false
	}
	tag = s[0]
	if tag != 'i' && tag != 't' {
		return 0, "", "", false
	}
	colon := strings.IndexByte(s[1:], ':')
	if colon < 1 {
		return 0, "", "", false
	}
	n, err := strconv.Atoi(s[1 : 1+colon])
	if err != nil || n < 0 {
		return 0, "", "", false
	}
	body := s[2+colon:]
	if len(body) < n {
		return 0, "", "", false
	}
	return tag, body[:n], body[n:], true
}
