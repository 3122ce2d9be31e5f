package config

import "unicode"

// KeypadLayout maps the hexadecimal keypad onto the left side of a QWERTY
// keyboard: character i is the host key for CHIP-8 key i.
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   ->   Q W E R
//	7 8 9 E        A S D F
//	A 0 B F        Z X C V
const KeypadLayout = "x123qweasdzc4rfv"

// KeyForRune returns the CHIP-8 key bound to a host character.
func KeyForRune(r rune) (int, bool) {
	r = unicode.ToLower(r)
	for i, c := range KeypadLayout {
		if c == r {
			return i, true
		}
	}
	return 0, false
}
