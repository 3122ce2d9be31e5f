package main

import (
	"strings"

	"gochip8/pkg/chip8"
)

// Each output character covers two display rows.
var halfBlocks = [2][2]string{
	{" ", "▄"}, // top dark
	{"▀", "█"}, // top lit
}

const (
	cursorHome  = "\x1b[H"
	clearScreen = "\x1b[2J"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// renderFrame draws f as 16 lines of 64 half-block characters. Lines end
// in CRLF because the terminal is in raw mode.
func renderFrame(f *chip8.Frame) string {
	var sb strings.Builder
	sb.WriteString(cursorHome)
	for y := 0; y < chip8.DisplayHeight; y += 2 {
		for x := 0; x < chip8.DisplayWidth; x++ {
			sb.WriteString(halfBlocks[b2i(f[y][x])][b2i(f[y+1][x])])
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
