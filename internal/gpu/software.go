package gpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"deedles.dev/taki/internal/drm"
	"deedles.dev/taki/internal/fimg"
	"deedles.dev/ximage/geom"
	"golang.org/x/sys/unix"
)

// Software is a CPU Context. Commands are recorded as closures and
// replayed on submit, which keeps the recording discipline of the
// interface honest.
type Software struct{}

func NewSoftware() *Software {
	return &Software{}
}

type softImage struct {
	pix    *fimg.XRGB
	layout Layout

	// dmabuf imports keep the client mapping alive.
	mapped []byte
}

func (img *softImage) Size() geom.Point[int32] {
	return geom.Pt(int32(img.pix.Rect.Dx()), int32(img.pix.Rect.Dy()))
}

type softCmd struct {
	ops []func()
}

func (gpu *Software) CreateImage(size geom.Point[int32], stride int32, data []byte) (Image, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("bad image size %vx%v", size.X, size.Y)
	}

	img := softImage{pix: fimg.NewXRGB(image.Rect(0, 0, int(size.X), int(size.Y)))}
	if data != nil {
		for y := range int(size.Y) {
			src := data[y*int(stride):]
			copy(img.pix.Pix[y*img.pix.Stride:(y+1)*img.pix.Stride], src)
		}
	}
	return &img, nil
}

func (gpu *Software) ImportDmabuf(params DmabufParams) (Image, error) {
	if len(params.Planes) != 1 {
		return nil, fmt.Errorf("%v planes: only single-plane imports are supported", len(params.Planes))
	}
	if params.Format != drm.FormatXRGB8888 && params.Format != drm.FormatARGB8888 {
		return nil, fmt.Errorf("unsupported format %#x", params.Format)
	}
	plane := params.Planes[0]
	if plane.Modifier != drm.ModifierLinear {
		return nil, fmt.Errorf("unsupported modifier %#x", plane.Modifier)
	}

	length := int(plane.Offset) + int(plane.Stride)*int(params.Size.Y)
	data, err := unix.Mmap(plane.FD, 0, length, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("map dmabuf: %w", err)
	}

	img := softImage{
		pix:    fimg.NewXRGB(image.Rect(0, 0, int(params.Size.X), int(params.Size.Y))),
		mapped: data,
	}
	for y := range int(params.Size.Y) {
		src := data[int(plane.Offset)+y*int(plane.Stride):]
		copy(img.pix.Pix[y*img.pix.Stride:(y+1)*img.pix.Stride], src)
	}
	return &img, nil
}

func (gpu *Software) DestroyImage(img Image) {
	si := img.(*softImage)
	if si.mapped != nil {
		unix.Munmap(si.mapped)
		si.mapped = nil
	}
	si.pix = nil
}

func (gpu *Software) BeginCommands() Cmd {
	return &softCmd{}
}

func (gpu *Software) Transition(cmd Cmd, img Image, from, to Layout) {
	si := img.(*softImage)
	cmd.(*softCmd).record(func() {
		si.layout = to
	})
}

func (gpu *Software) ClearColor(cmd Cmd, img Image, c color.RGBA) {
	si := img.(*softImage)
	cmd.(*softCmd).record(func() {
		si.pix.Fill(c)
	})
}

func (gpu *Software) Blit(cmd Cmd, src, dst Image, at geom.Point[int32]) {
	ss, ds := src.(*softImage), dst.(*softImage)
	cmd.(*softCmd).record(func() {
		blit(ds.pix, ss.pix, image.Pt(int(at.X), int(at.Y)))
	})
}

func (cmd *softCmd) record(op func()) {
	cmd.ops = append(cmd.ops, op)
}

func (gpu *Software) SubmitCommands(cmd Cmd) {
	c := cmd.(*softCmd)
	for _, op := range c.ops {
		op()
	}
	c.ops = nil
}

// QueueWaitIdle is a no-op: submission already ran everything.
func (gpu *Software) QueueWaitIdle() {}

func blit(dst, src *fimg.XRGB, at image.Point) {
	r := src.Rect.Sub(src.Rect.Min).Add(at).Intersect(dst.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		so := src.PixOffset(src.Rect.Min.X+(r.Min.X-at.X), src.Rect.Min.Y+(y-at.Y))
		do := dst.PixOffset(r.Min.X, y)
		copy(dst.Pix[do:do+4*r.Dx()], src.Pix[so:so+4*r.Dx()])
	}
}

// softSwapchain is a two-image ring. Present publishes the image as
// the front buffer, where tests can look at it.
type softSwapchain struct {
	gpu    *Software
	images [2]*softImage
	next   int
	front  *softImage
}

func (gpu *Software) CreateSwapchain(size geom.Point[int32]) (Swapchain, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, errors.New("degenerate swapchain extent")
	}
	var sc softSwapchain
	sc.gpu = gpu
	for i := range sc.images {
		img, err := gpu.CreateImage(size, size.X*4, nil)
		if err != nil {
			return nil, err
		}
		sc.images[i] = img.(*softImage)
	}
	return &sc, nil
}

func (sc *softSwapchain) Acquire() (Image, geom.Point[int32], error) {
	img := sc.images[sc.next]
	sc.next = (sc.next + 1) % len(sc.images)
	img.layout = LayoutUndefined
	return img, img.Size(), nil
}

func (sc *softSwapchain) Present(img Image) error {
	si := img.(*softImage)
	if si.layout != LayoutPresentSrc {
		return fmt.Errorf("present of image in layout %v", si.layout)
	}
	sc.front = si
	return nil
}

func (sc *softSwapchain) Destroy() {
	for _, img := range sc.images {
		sc.gpu.DestroyImage(img)
	}
}

// Front returns the last presented image, for tests and screenshots.
func (sc *softSwapchain) Front() *fimg.XRGB {
	if sc.front == nil {
		return nil
	}
	return sc.front.pix
}
