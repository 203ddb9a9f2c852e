package main

import (
	"testing"

	"deedles.dev/taki/internal/fimg"
	"deedles.dev/taki/protocol"
	"deedles.dev/taki/wire"
	"deedles.dev/ximage/geom"
)

func TestZeroExtentFallsBack(t *testing.T) {
	server := newTestServer(t)
	server.outputAdded(geom.Pt[int32](0, 0))

	if len(server.outputs) != 1 {
		t.Fatalf("%v outputs", len(server.outputs))
	}
	if size := server.outputs[0].size; size != geom.Pt[int32](1280, 720) {
		t.Errorf("output size = %+v, want 1280x720", size)
	}
}

type frontImager interface {
	Front() *fimg.XRGB
}

func TestFrameCompositesAndFiresCallbacks(t *testing.T) {
	server := newTestServer(t)
	server.outputAdded(geom.Pt[int32](64, 64))

	tc := connect(t, server)
	tc.setup()
	tc.bind("wl_compositor", 5, 4)

	tc.request(4, protocol.CompositorCreateSurface, func(w *wire.Writer) {
		w.PutUint(7)
	})
	createShmBuffer(tc, []byte{0x11, 0x22, 0x33, 0x00})

	tc.request(7, protocol.SurfaceAttach, func(w *wire.Writer) {
		w.PutObject(11)
		w.PutInt(0)
		w.PutInt(0)
	})
	tc.request(7, protocol.SurfaceFrame, func(w *wire.Writer) {
		w.PutUint(12)
	})
	// Commit applies the buffer and, with no pacing backend,
	// immediately runs a frame tick.
	tc.request(7, protocol.SurfaceCommit, nil)

	tc.nextFor(11, protocol.BufferEventRelease)

	r := tc.nextFor(12, protocol.CallbackEventDone)
	if _, err := r.Uint(); err != nil {
		t.Fatalf("callback time: %v", err)
	}

	// The callback resource is retired with the frame.
	r = tc.nextFor(1, protocol.DisplayEventDeleteID)
	if id, _ := r.Uint(); id != 12 {
		t.Errorf("delete_id = %v, want 12", id)
	}

	front := server.outputs[0].swapchain.(frontImager).Front()
	if front == nil {
		t.Fatal("nothing presented")
	}
	if front.Pix[0] != 0x11 || front.Pix[1] != 0x22 || front.Pix[2] != 0x33 {
		t.Errorf("composited pixel = % x", front.Pix[:4])
	}
	// Away from the surface, the background colour shows.
	off := front.PixOffset(32, 32)
	bg := server.Config.BackgroundColor()
	if front.Pix[off] != bg.B || front.Pix[off+1] != bg.G || front.Pix[off+2] != bg.R {
		t.Errorf("background pixel = % x", front.Pix[off:off+4])
	}
}

func TestFrameCallbackFiresOncePerCommit(t *testing.T) {
	server := newTestServer(t)
	server.outputAdded(geom.Pt[int32](16, 16))

	tc := connect(t, server)
	tc.setup()
	tc.bind("wl_compositor", 5, 4)

	tc.request(4, protocol.CompositorCreateSurface, func(w *wire.Writer) {
		w.PutUint(7)
	})
	createShmBuffer(tc, []byte{1, 2, 3, 4})

	tc.request(7, protocol.SurfaceAttach, func(w *wire.Writer) {
		w.PutObject(11)
		w.PutInt(0)
		w.PutInt(0)
	})
	tc.request(7, protocol.SurfaceFrame, func(w *wire.Writer) {
		w.PutUint(12)
	})
	tc.request(7, protocol.SurfaceCommit, nil)
	tc.nextFor(12, protocol.CallbackEventDone)

	// A second tick must not fire the consumed callback again.
	server.frameAll()
	server.flushClients()

	if len(server.surfaces[0].frames) != 0 {
		t.Error("frame callback still armed after firing")
	}
	if _, ok := tc.sc.objects.get(12); ok {
		t.Error("callback object still registered")
	}
}
