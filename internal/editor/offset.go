package editor

import "unicode/utf16"

// Browsers report text positions in UTF-16 code units. The field counts
// runes, so characters outside the BMP take two units and one rune.

// RuneOffset converts a UTF-16 offset into s to a rune offset. An offset
// that splits a surrogate pair lands after the character.
func RuneOffset(s string, units int) int {
	if units <= 0 {
		return 0
	}
	n, u := 0, 0
	for _, r := range s {
		if u >= units {
			break
		}
		u += utf16.RuneLen(r)
		n++
	}
	return n
}

// UnitOffset converts a rune offset into s to a UTF-16 offset.
func UnitOffset(s string, runes int) int {
	u, n := 0, 0
	for _, r := range s {
		if n >= runes {
			break
		}
		u += utf16.RuneLen(r)
		n++
	}
	return u
}
