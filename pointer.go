package contracts

import "strings"

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// joinPointer appends an RFC 6901 reference token to base.
func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}

// Pointer renders keys as a JSON Pointer. Pointer() is "/".
func Pointer(keys ...string) string {
	if len(keys) == 0 {
		return "/"
	}
	p := ""
	for _, k := range keys {
		p = joinPointer(p, k)
	}
	return p
}
