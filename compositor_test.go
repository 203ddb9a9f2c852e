package main

import (
	"testing"

	"deedles.dev/taki/internal/gpu"
	"deedles.dev/taki/internal/poll"
	"deedles.dev/taki/protocol"
	"deedles.dev/taki/wire"
	"github.com/adrg/xdg"
	"golang.org/x/sys/unix"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	xdg.Reload()

	loop, err := poll.NewLoop()
	if err != nil {
		t.Fatalf("event loop: %v", err)
	}
	t.Cleanup(loop.Close)

	server, err := NewServer(DefaultConfig(), loop, gpu.NewSoftware())
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	t.Cleanup(server.Close)
	return server
}

// testClient drives the server through a socketpair, playing the
// part of a protocol client.
type testClient struct {
	t      *testing.T
	server *Server
	sc     *Client
	conn   *wire.Conn

	globals map[string]uint32
}

func connect(t *testing.T, server *Server) *testClient {
	t.Helper()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}

	// A missing event should fail the test, not hang it.
	tv := unix.Timeval{Sec: 2}
	unix.SetsockoptTimeval(fds[1], unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv)

	server.addClient(fds[0])
	conn := wire.NewConn(fds[1])
	t.Cleanup(func() { conn.Close() })

	return &testClient{
		t:      t,
		server: server,
		sc:     server.clients[len(server.clients)-1],
		conn:   conn,
	}
}

// request sends one request and lets the server dispatch it.
func (tc *testClient) request(object uint32, opcode uint16, build func(w *wire.Writer)) {
	tc.t.Helper()

	w := wire.NewWriter()
	if build != nil {
		build(w)
	}
	msg, err := w.Finish(object, opcode)
	if err != nil {
		tc.t.Fatalf("assemble request: %v", err)
	}
	if err := tc.conn.WriteMessage(msg); err != nil {
		tc.t.Fatalf("send request: %v", err)
	}
	msg.Dispose()

	tc.sc.readMessage()
	tc.server.flushClients()
}

func (tc *testClient) next() (wire.Header, *wire.Reader) {
	tc.t.Helper()
	hdr, r, err := tc.conn.ReadMessage()
	if err != nil {
		tc.t.Fatalf("read event: %v", err)
	}
	return hdr, r
}

// nextFor skips events until one matches, with a sanity bound.
func (tc *testClient) nextFor(object uint32, opcode uint16) *wire.Reader {
	tc.t.Helper()
	for range 64 {
		hdr, r := tc.next()
		if hdr.Object == object && hdr.Opcode == opcode {
			return r
		}
	}
	tc.t.Fatalf("no event %v@%v in 64 messages", object, opcode)
	return nil
}

// setup performs the registry handshake and records global names.
func (tc *testClient) setup() {
	tc.t.Helper()

	tc.request(1, protocol.DisplayGetRegistry, func(w *wire.Writer) {
		w.PutUint(2)
	})

	tc.globals = make(map[string]uint32)
	for range tc.server.globals {
		r := tc.nextFor(2, protocol.RegistryEventGlobal)
		name, _ := r.Uint()
		iface, _ := r.String()
		tc.globals[iface] = name
	}
}

func (tc *testClient) bind(iface string, version, id uint32) {
	tc.t.Helper()

	name, ok := tc.globals[iface]
	if !ok {
		tc.t.Fatalf("no global %q", iface)
	}
	tc.request(2, protocol.RegistryBind, func(w *wire.Writer) {
		w.PutUint(name)
		w.PutString(iface)
		w.PutUint(version)
		w.PutUint(id)
	})
}

func TestHandshake(t *testing.T) {
	server := newTestServer(t)
	tc := connect(t, server)

	tc.request(1, protocol.DisplayGetRegistry, func(w *wire.Writer) {
		w.PutUint(2)
	})

	seen := make(map[string]uint32)
	for range server.globals {
		r := tc.nextFor(2, protocol.RegistryEventGlobal)
		if _, err := r.Uint(); err != nil {
			t.Fatalf("global name: %v", err)
		}
		iface, err := r.String()
		if err != nil {
			t.Fatalf("global interface: %v", err)
		}
		version, err := r.Uint()
		if err != nil {
			t.Fatalf("global version: %v", err)
		}
		seen[iface] = version
	}

	want := map[string]uint32{
		"wl_compositor":              5,
		"wl_shm":                     1,
		"wl_seat":                    7,
		"xdg_wm_base":                5,
		"zxdg_decoration_manager_v1": 1,
		"zwp_linux_dmabuf_v1":        4,
	}
	for iface, version := range want {
		if seen[iface] != version {
			t.Errorf("global %v@%v, want @%v", iface, seen[iface], version)
		}
	}

	// sync elicits done(0) followed by delete_id.
	tc.request(1, protocol.DisplaySync, func(w *wire.Writer) {
		w.PutUint(3)
	})

	hdr, r := tc.next()
	if hdr.Object != 3 || hdr.Opcode != protocol.CallbackEventDone {
		t.Fatalf("expected wl_callback.done on 3, got %v@%v", hdr.Object, hdr.Opcode)
	}
	if data, _ := r.Uint(); data != 0 {
		t.Errorf("callback data = %v", data)
	}

	hdr, r = tc.next()
	if hdr.Object != 1 || hdr.Opcode != protocol.DisplayEventDeleteID {
		t.Fatalf("expected delete_id, got %v@%v", hdr.Object, hdr.Opcode)
	}
	if id, _ := r.Uint(); id != 3 {
		t.Errorf("delete_id = %v", id)
	}
}

func TestDisconnectIsolation(t *testing.T) {
	server := newTestServer(t)
	a := connect(t, server)
	b := connect(t, server)

	// A short-sized frame is fatal for A.
	frame := []byte{1, 0, 0, 0, 0, 0, 7, 0}
	if err := unix.Sendmsg(a.conn.Fd(), frame, nil, nil, 0); err != nil {
		t.Fatalf("send: %v", err)
	}
	a.sc.readMessage()

	if a.sc.state != clientClosed {
		t.Error("client A still alive after framing violation")
	}
	if len(server.clients) != 1 {
		t.Errorf("%v clients left, want 1", len(server.clients))
	}

	// B is unaffected.
	b.request(1, protocol.DisplaySync, func(w *wire.Writer) {
		w.PutUint(2)
	})
	if hdr, _ := b.next(); hdr.Object != 2 || hdr.Opcode != protocol.CallbackEventDone {
		t.Errorf("B did not get its callback: %v@%v", hdr.Object, hdr.Opcode)
	}
}

func TestUseAfterDestroy(t *testing.T) {
	server := newTestServer(t)
	tc := connect(t, server)
	tc.setup()
	tc.bind("wl_compositor", 5, 4)

	tc.request(4, protocol.CompositorCreateRegion, func(w *wire.Writer) {
		w.PutUint(5)
	})
	tc.request(5, protocol.RegionDestroy, nil)

	if r := tc.nextFor(1, protocol.DisplayEventDeleteID); r != nil {
		if id, _ := r.Uint(); id != 5 {
			t.Errorf("delete_id = %v, want 5", id)
		}
	}

	// Any later reference to the destroyed id is fatal.
	tc.request(5, protocol.RegionAdd, func(w *wire.Writer) {
		w.PutInt(0)
		w.PutInt(0)
		w.PutInt(1)
		w.PutInt(1)
	})
	if tc.sc.state != clientClosed {
		t.Error("reference to destroyed id did not kill the client")
	}
}

func TestUnknownOpcode(t *testing.T) {
	server := newTestServer(t)
	tc := connect(t, server)

	// wl_display has two requests; opcode 9 is out of range.
	tc.request(1, 9, nil)
	if tc.sc.state != clientClosed {
		t.Error("out-of-range opcode did not kill the client")
	}
}

func TestBindUnknownGlobal(t *testing.T) {
	server := newTestServer(t)
	tc := connect(t, server)
	tc.setup()

	tc.request(2, protocol.RegistryBind, func(w *wire.Writer) {
		w.PutUint(9999)
		w.PutString("wl_compositor")
		w.PutUint(1)
		w.PutUint(4)
	})
	if tc.sc.state != clientClosed {
		t.Error("bind to unknown global did not kill the client")
	}
}

func TestBindInterfaceMismatch(t *testing.T) {
	server := newTestServer(t)
	tc := connect(t, server)
	tc.setup()

	tc.request(2, protocol.RegistryBind, func(w *wire.Writer) {
		w.PutUint(tc.globals["wl_shm"])
		w.PutString("wl_compositor")
		w.PutUint(1)
		w.PutUint(4)
	})
	if tc.sc.state != clientClosed {
		t.Error("bind with mismatched interface did not kill the client")
	}
}

func TestVersionClamped(t *testing.T) {
	server := newTestServer(t)
	tc := connect(t, server)
	tc.setup()

	tc.bind("wl_compositor", 99, 4)
	obj, ok := tc.sc.objects.get(4)
	if !ok {
		t.Fatal("bound object missing")
	}
	if obj.Version != 5 {
		t.Errorf("version %v, want clamped to 5", obj.Version)
	}
}
