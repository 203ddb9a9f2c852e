package main

import (
	"fmt"
	"image"
	"path/filepath"
	"time"

	"deedles.dev/taki/internal/gpu"
	"deedles.dev/taki/internal/poll"
	"deedles.dev/taki/internal/util"
	"deedles.dev/taki/internal/xkb"
	"deedles.dev/taki/protocol"
	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

type Server struct {
	Config *Config

	loop    *poll.Loop
	gpu     gpu.Context
	backend Backend
	xkb     *xkb.Context

	socketPath string
	listenFD   int

	clients []*Client
	globals []*Global

	nextGlobalName uint32
	nextServerID   uint32
	serial         uint32

	started time.Time

	seat     *Seat
	outputs  []*Output
	surfaces []*Surface

	wallpaperSrc image.Image
}

// Global is a server-wide advertisable object factory.
type Global struct {
	name    uint32
	iface   protocol.Interface
	version uint32

	// bind attaches interface state and sends the initial event
	// burst for a freshly bound object.
	bind func(c *Client, obj *Object)
}

func NewServer(cfg *Config, loop *poll.Loop, g gpu.Context) (*Server, error) {
	if xdg.RuntimeDir == "" {
		return nil, fmt.Errorf("XDG_RUNTIME_DIR is not set")
	}

	server := Server{
		Config:       cfg,
		loop:         loop,
		gpu:          g,
		xkb:          xkb.NewContext(),
		listenFD:     -1,
		nextServerID: serverIDBase,
		started:      time.Now(),
	}

	seat, err := newSeat(&server)
	if err != nil {
		return nil, fmt.Errorf("create seat: %w", err)
	}
	server.seat = seat

	server.createGlobals()
	server.loadWallpaper()

	loop.AddPostStep(server.flushClients)

	return &server, nil
}

func (server *Server) createGlobals() {
	server.addGlobal(protocol.Compositor, bindCompositor)
	server.addGlobal(protocol.Shm, bindShm)
	server.addGlobal(protocol.Seat, bindSeat)
	server.addGlobal(protocol.WmBase, bindWmBase)
	server.addGlobal(protocol.DecorationManager, bindDecorationManager)
	server.addGlobal(protocol.Dmabuf, bindDmabuf)
}

func (server *Server) addGlobal(iface protocol.Interface, bind func(*Client, *Object)) {
	server.nextGlobalName++
	server.globals = append(server.globals, &Global{
		name:    server.nextGlobalName,
		iface:   iface,
		version: protocol.Interfaces[iface].Version,
		bind:    bind,
	})
}

func (server *Server) findGlobal(name uint32) (*Global, bool) {
	return util.FindFunc(server.globals, func(g *Global) bool { return g.name == name })
}

// Listen binds the public socket at $XDG_RUNTIME_DIR/<name> and
// starts accepting clients.
func (server *Server) Listen(name string) error {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("socket: %w", err)
	}

	path := filepath.Join(xdg.RuntimeDir, name)
	unix.Unlink(path)

	err = unix.Bind(fd, &unix.SockaddrUnix{Name: path})
	if err != nil {
		unix.Close(fd)
		return fmt.Errorf("bind %v: %w", path, err)
	}
	if err := unix.Listen(fd, 8); err != nil {
		unix.Close(fd)
		return fmt.Errorf("listen %v: %w", path, err)
	}

	server.listenFD = fd
	server.socketPath = path

	err = server.loop.AddFD(fd, poll.In, func(fd int, events uint32) {
		server.accept()
	})
	if err != nil {
		return err
	}

	logrus.WithField("socket", path).Info("listening")
	return nil
}

func (server *Server) accept() {
	fd, _, err := unix.Accept4(server.listenFD, unix.SOCK_CLOEXEC)
	if err != nil {
		logrus.WithError(err).Warn("accept")
		return
	}
	server.addClient(fd)
}

func (server *Server) removeClient(c *Client) {
	server.clients = util.Remove(server.clients, c)
}

func (server *Server) flushClients() {
	// flush may disconnect, which mutates server.clients.
	for _, c := range append([]*Client(nil), server.clients...) {
		c.flush()
	}
}

func (server *Server) allocServerID() uint32 {
	id := server.nextServerID
	server.nextServerID++
	return id
}

// nextSerial mints a serial from the single per-display counter.
func (server *Server) nextSerial() uint32 {
	server.serial++
	return server.serial
}

// timeMs is the server-relative millisecond clock sent to clients.
func (server *Server) timeMs() uint32 {
	return uint32(time.Since(server.started) / time.Millisecond)
}

// damaged schedules composition after client state changed. When the
// backend paces frames itself this is a no-op; otherwise the tick
// runs immediately.
func (server *Server) damaged() {
	if server.backend != nil && server.backend.Paces() {
		return
	}
	server.frameAll()
}

func (server *Server) frameAll() {
	for _, out := range server.outputs {
		out.frame()
	}
}

func (server *Server) Close() {
	for _, c := range append([]*Client(nil), server.clients...) {
		c.disconnect()
	}
	for _, out := range append([]*Output(nil), server.outputs...) {
		out.destroy()
	}
	server.seat.destroy()
	if server.listenFD >= 0 {
		server.loop.RemoveFD(server.listenFD)
		unix.Close(server.listenFD)
		unix.Unlink(server.socketPath)
	}
}
