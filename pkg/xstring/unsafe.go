package xstring

import "unsafe"

// ToBytes and FromBytes convert without copying. Callers must not
// mutate the result.

func ToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func FromBytes(s []byte) string {
	return unsafe.String(unsafe.SliceData(s), len(s))
}
