// Package gpu defines the rendering contract the compositor draws
// through. The interface is shaped after a Vulkan-style command
// recording model; the software implementation exists so that the
// compositor runs and tests without a GPU.
package gpu

import (
	"image/color"

	"deedles.dev/ximage/geom"
)

// Layout mirrors image layout transitions. The software backend
// tracks them only to catch sequencing mistakes.
type Layout int

const (
	LayoutUndefined Layout = iota
	LayoutGeneral
	LayoutTransferDst
	LayoutPresentSrc
)

// Image is an opaque texture handle owned by a Context.
type Image interface {
	Size() geom.Point[int32]
}

// Cmd is an in-progress command recording.
type Cmd interface{}

// DmabufPlane describes one plane of a dmabuf import.
type DmabufPlane struct {
	FD       int
	Offset   uint32
	Stride   uint32
	Modifier uint64
}

// DmabufParams is the full description of a dmabuf image.
type DmabufParams struct {
	Size   geom.Point[int32]
	Format uint32
	Flags  uint32
	Planes []DmabufPlane
}

type Context interface {
	// CreateImage uploads tightly packed or strided XRGB8888
	// pixel rows into a new image. data may be nil for an
	// uninitialised image.
	CreateImage(size geom.Point[int32], stride int32, data []byte) (Image, error)

	// ImportDmabuf wraps client-exported GPU memory as an image.
	ImportDmabuf(params DmabufParams) (Image, error)

	DestroyImage(Image)

	BeginCommands() Cmd
	Transition(cmd Cmd, img Image, from, to Layout)
	ClearColor(cmd Cmd, img Image, c color.RGBA)
	Blit(cmd Cmd, src, dst Image, at geom.Point[int32])
	SubmitCommands(Cmd)
	QueueWaitIdle()

	CreateSwapchain(size geom.Point[int32]) (Swapchain, error)
}

// Swapchain is a ring of presentable images for one output.
type Swapchain interface {
	Acquire() (Image, geom.Point[int32], error)
	Present(Image) error
	Destroy()
}
