package main

import (
	"testing"

	"deedles.dev/taki/protocol"
	"deedles.dev/taki/wire"
	"golang.org/x/sys/unix"
)

func shmFD(t *testing.T, data []byte) int {
	t.Helper()
	fd, err := unix.MemfdCreate("taki-test", unix.MFD_CLOEXEC)
	if err != nil {
		t.Fatalf("memfd: %v", err)
	}
	t.Cleanup(func() { unix.Close(fd) })
	if err := unix.Ftruncate(fd, int64(len(data))); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if _, err := unix.Pwrite(fd, data, 0); err != nil {
		t.Fatalf("write: %v", err)
	}
	return fd
}

// createShmBuffer builds pool 10 and buffer 11 holding one XRGB
// pixel.
func createShmBuffer(tc *testClient, pixel []byte) {
	tc.t.Helper()
	tc.bind("wl_shm", 1, 6)
	tc.nextFor(6, protocol.ShmEventFormat)

	fd := shmFD(tc.t, pixel)
	tc.request(6, protocol.ShmCreatePool, func(w *wire.Writer) {
		w.PutUint(10)
		w.PutFD(fd)
		w.PutInt(int32(len(pixel)))
	})
	tc.request(10, protocol.ShmPoolCreateBuffer, func(w *wire.Writer) {
		w.PutUint(11)
		w.PutInt(0)
		w.PutInt(1)
		w.PutInt(1)
		w.PutInt(4)
		w.PutUint(protocol.ShmFormatXRGB8888)
	})
	if tc.sc.state != clientActive {
		tc.t.Fatal("buffer creation killed the client")
	}
}

func TestShmCommitHandshake(t *testing.T) {
	server := newTestServer(t)
	tc := connect(t, server)
	tc.setup()
	tc.bind("wl_compositor", 5, 4)
	tc.bind("xdg_wm_base", 5, 5)

	tc.request(4, protocol.CompositorCreateSurface, func(w *wire.Writer) {
		w.PutUint(7)
	})
	tc.request(5, protocol.WmBaseGetXDGSurface, func(w *wire.Writer) {
		w.PutUint(8)
		w.PutUint(7)
	})
	tc.request(8, protocol.XDGSurfaceGetToplevel, func(w *wire.Writer) {
		w.PutUint(9)
	})

	createShmBuffer(tc, []byte{0x11, 0x22, 0x33, 0x00})

	tc.request(7, protocol.SurfaceAttach, func(w *wire.Writer) {
		w.PutObject(11)
		w.PutInt(0)
		w.PutInt(0)
	})
	tc.request(7, protocol.SurfaceCommit, nil)

	// First commit: the configure sequence, no content events.
	r := tc.nextFor(9, protocol.XDGToplevelEventConfigureBounds)
	if bw, _ := r.Int(); bw != 0 {
		t.Errorf("configure_bounds width %v", bw)
	}

	r = tc.nextFor(9, protocol.XDGToplevelEventConfigure)
	width, _ := r.Int()
	height, _ := r.Int()
	states, _ := r.Array()
	if width != 0 || height != 0 {
		t.Errorf("configure %vx%v, want 0x0", width, height)
	}
	if len(states) != 4 || states[0] != protocol.ToplevelStateActivated {
		t.Errorf("configure states = % x", states)
	}

	r = tc.nextFor(9, protocol.XDGToplevelEventWmCapabilities)
	if caps, _ := r.Array(); len(caps) != 8 {
		t.Errorf("wm_capabilities = % x", caps)
	}

	r = tc.nextFor(8, protocol.XDGSurfaceEventConfigure)
	serial, _ := r.Uint()
	if serial == 0 {
		t.Error("configure serial is 0")
	}

	// Ack and commit again; now the buffer is consumed and
	// released.
	tc.request(8, protocol.XDGSurfaceAckConfigure, func(w *wire.Writer) {
		w.PutUint(serial)
	})
	tc.request(7, protocol.SurfaceCommit, nil)

	tc.nextFor(11, protocol.BufferEventRelease)

	s := server.surfaces[0]
	if s.image == nil {
		t.Error("surface has no contents after second commit")
	}
}

func TestShmBufferBounds(t *testing.T) {
	server := newTestServer(t)
	tc := connect(t, server)
	tc.setup()
	tc.bind("wl_shm", 1, 6)

	fd := shmFD(t, make([]byte, 4))
	tc.request(6, protocol.ShmCreatePool, func(w *wire.Writer) {
		w.PutUint(10)
		w.PutFD(fd)
		w.PutInt(4)
	})

	// stride*height + offset == pool size is fine.
	tc.request(10, protocol.ShmPoolCreateBuffer, func(w *wire.Writer) {
		w.PutUint(11)
		w.PutInt(0)
		w.PutInt(1)
		w.PutInt(1)
		w.PutInt(4)
		w.PutUint(protocol.ShmFormatXRGB8888)
	})
	if tc.sc.state != clientActive {
		t.Fatal("exact-fit buffer was rejected")
	}

	// One byte over is a protocol error.
	tc.request(10, protocol.ShmPoolCreateBuffer, func(w *wire.Writer) {
		w.PutUint(12)
		w.PutInt(1)
		w.PutInt(1)
		w.PutInt(1)
		w.PutInt(4)
		w.PutUint(protocol.ShmFormatXRGB8888)
	})
	if tc.sc.state != clientClosed {
		t.Error("overflowing buffer did not kill the client")
	}
}

func TestCommitIsAtomic(t *testing.T) {
	server := newTestServer(t)
	tc := connect(t, server)
	tc.setup()
	tc.bind("wl_compositor", 5, 4)

	tc.request(4, protocol.CompositorCreateSurface, func(w *wire.Writer) {
		w.PutUint(7)
	})

	createShmBuffer(tc, []byte{1, 2, 3, 4})

	// Attach without commit: nothing observable.
	tc.request(7, protocol.SurfaceAttach, func(w *wire.Writer) {
		w.PutObject(11)
		w.PutInt(0)
		w.PutInt(0)
	})

	s := server.surfaces[0]
	if s.image != nil {
		t.Fatal("attach became observable before commit")
	}

	tc.request(7, protocol.SurfaceCommit, nil)
	if s.image == nil {
		t.Fatal("commit did not apply the attached buffer")
	}
	tc.nextFor(11, protocol.BufferEventRelease)
}

func TestDestroyedBufferClearsOnCommit(t *testing.T) {
	server := newTestServer(t)
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
	tc.request(11, protocol.BufferDestroy, nil)
	tc.request(7, protocol.SurfaceCommit, nil)

	if server.surfaces[0].image != nil {
		t.Error("commit of a destroyed buffer produced contents")
	}
	if tc.sc.state != clientActive {
		t.Error("destroyed pending buffer killed the client")
	}
}

func TestNullAttachClears(t *testing.T) {
	server := newTestServer(t)
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
	tc.request(7, protocol.SurfaceCommit, nil)
	tc.nextFor(11, protocol.BufferEventRelease)

	s := server.surfaces[0]
	if s.image == nil {
		t.Fatal("no contents after commit")
	}

	tc.request(7, protocol.SurfaceAttach, func(w *wire.Writer) {
		w.PutObject(0)
		w.PutInt(0)
		w.PutInt(0)
	})
	tc.request(7, protocol.SurfaceCommit, nil)
	if s.image != nil {
		t.Error("null attach + commit did not clear contents")
	}
}

func TestDegenerateGeometryDiscarded(t *testing.T) {
	server := newTestServer(t)
	tc := connect(t, server)
	tc.setup()
	tc.bind("wl_compositor", 5, 4)
	tc.bind("xdg_wm_base", 5, 5)

	tc.request(4, protocol.CompositorCreateSurface, func(w *wire.Writer) {
		w.PutUint(7)
	})
	tc.request(5, protocol.WmBaseGetXDGSurface, func(w *wire.Writer) {
		w.PutUint(8)
		w.PutUint(7)
	})

	tc.request(8, protocol.XDGSurfaceSetWindowGeometry, func(w *wire.Writer) {
		w.PutInt(0)
		w.PutInt(0)
		w.PutInt(100)
		w.PutInt(50)
	})
	tc.request(7, protocol.SurfaceCommit, nil)

	s := server.surfaces[0]
	if !s.current.hasGeometry || s.current.geometry.Dx() != 100 {
		t.Fatalf("geometry not applied: %+v", s.current.geometry)
	}

	tc.request(8, protocol.XDGSurfaceSetWindowGeometry, func(w *wire.Writer) {
		w.PutInt(0)
		w.PutInt(0)
		w.PutInt(0)
		w.PutInt(50)
	})
	tc.request(7, protocol.SurfaceCommit, nil)

	if s.current.geometry.Dx() != 100 {
		t.Errorf("degenerate geometry replaced the old one: %+v", s.current.geometry)
	}
	if tc.sc.state != clientActive {
		t.Error("degenerate geometry killed the client")
	}
}
