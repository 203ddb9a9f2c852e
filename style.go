package main

import "image/color"

var (
	ColorBackground = color.RGBA{0x1A, 0x1A, 0x1A, 0xFF}
)
