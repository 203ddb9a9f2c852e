package gpu

import (
	"image/color"
	"testing"

	"deedles.dev/ximage/geom"
)

func TestClearAndPresent(t *testing.T) {
	g := NewSoftware()

	sc, err := g.CreateSwapchain(geom.Pt[int32](4, 4))
	if err != nil {
		t.Fatalf("swapchain: %v", err)
	}
	defer sc.Destroy()

	img, extent, err := sc.Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if extent != geom.Pt[int32](4, 4) {
		t.Errorf("extent = %+v", extent)
	}

	cmd := g.BeginCommands()
	g.Transition(cmd, img, LayoutUndefined, LayoutTransferDst)
	g.ClearColor(cmd, img, color.RGBA{0x10, 0x20, 0x30, 0xFF})
	g.Transition(cmd, img, LayoutTransferDst, LayoutPresentSrc)
	g.SubmitCommands(cmd)
	g.QueueWaitIdle()

	if err := sc.Present(img); err != nil {
		t.Fatalf("present: %v", err)
	}

	front := sc.(*softSwapchain).Front()
	if front == nil {
		t.Fatal("nothing presented")
	}
	// XRGB memory order is B, G, R, X.
	if front.Pix[0] != 0x30 || front.Pix[1] != 0x20 || front.Pix[2] != 0x10 {
		t.Errorf("cleared pixel = % x", front.Pix[:4])
	}
}

func TestPresentRequiresTransition(t *testing.T) {
	g := NewSoftware()
	sc, err := g.CreateSwapchain(geom.Pt[int32](2, 2))
	if err != nil {
		t.Fatalf("swapchain: %v", err)
	}
	defer sc.Destroy()

	img, _, err := sc.Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := sc.Present(img); err == nil {
		t.Error("presented an image that never left the undefined layout")
	}
}

func TestCreateImageHonoursStride(t *testing.T) {
	g := NewSoftware()

	// 2x2 image with an 12-byte stride: one junk pixel per row.
	data := []byte{
		1, 1, 1, 1, 2, 2, 2, 2, 9, 9, 9, 9,
		3, 3, 3, 3, 4, 4, 4, 4, 9, 9, 9, 9,
	}
	img, err := g.CreateImage(geom.Pt[int32](2, 2), 12, data)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer g.DestroyImage(img)

	pix := img.(*softImage).pix
	if pix.Pix[0] != 1 || pix.Pix[4] != 2 || pix.Pix[8] != 3 || pix.Pix[12] != 4 {
		t.Errorf("pixels = % x", pix.Pix)
	}
}

func TestBlitClips(t *testing.T) {
	g := NewSoftware()

	src, err := g.CreateImage(geom.Pt[int32](2, 2), 8, []byte{
		1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4,
	})
	if err != nil {
		t.Fatalf("create src: %v", err)
	}
	dst, err := g.CreateImage(geom.Pt[int32](2, 2), 8, nil)
	if err != nil {
		t.Fatalf("create dst: %v", err)
	}

	cmd := g.BeginCommands()
	g.Blit(cmd, src, dst, geom.Pt[int32](1, 1))
	g.SubmitCommands(cmd)

	pix := dst.(*softImage).pix
	// Only the top-left source pixel lands, at (1,1).
	if pix.Pix[pix.PixOffset(1, 1)] != 1 {
		t.Errorf("blit target pixel = %v", pix.Pix[pix.PixOffset(1, 1)])
	}
	if pix.Pix[0] != 0 {
		t.Errorf("blit wrote outside the target rect")
	}
}
