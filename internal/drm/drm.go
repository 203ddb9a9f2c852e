// Package drm contains the handful of DRM fourcc constants that the
// compositor understands.
package drm

const (
	FormatXRGB8888 = 'X' | ('R' << 8) | ('2' << 16) | ('4' << 24)
	FormatARGB8888 = 'A' | ('R' << 8) | ('2' << 16) | ('4' << 24)
	FormatABGR8888 = 'A' | ('B' << 8) | ('2' << 16) | ('4' << 24)

	FormatBigEndian = 1 << 31
)

const (
	ModifierLinear  uint64 = 0
	ModifierInvalid uint64 = 0x00FFFFFFFFFFFFFF
)
