package main

import (
	"fmt"
	"unsafe"

	"deedles.dev/taki/internal/poll"
	"deedles.dev/taki/protocol"
	"deedles.dev/ximage/geom"
	"golang.org/x/sys/unix"
)

// Backend sources outputs and input events, either from raw devices
// or from a host session. Only the events it delivers matter to the
// compositor.
type Backend interface {
	Start() error
	Close() error

	// Paces reports whether the backend drives frame timing
	// itself. When it does not, commits trigger frames directly.
	Paces() bool
}

// BackendHandler is the compositor half of the backend contract.
type BackendHandler struct {
	OutputAdded   func(size geom.Point[int32])
	OutputRemoved func()
	Frame         func()

	Capabilities func(caps uint32)
	RepeatInfo   func(rate, delay int32)
	Key          func(code uint32, pressed bool)
	Modifiers    func(depressed, latched, locked, group uint32)

	PointerMotion func(pos geom.Point[float64])
	PointerButton func(button uint32, pressed bool)
	PointerAxis   func(delta geom.Point[float64])
}

// Handler wires backend events into the seat and the frame loop.
func (server *Server) Handler() BackendHandler {
	return BackendHandler{
		OutputAdded:   server.outputAdded,
		OutputRemoved: server.outputRemoved,
		Frame:         server.frameAll,
		Capabilities:  server.seat.setCapabilities,
		RepeatInfo:    server.seat.keyboard.setRepeatInfo,
		Key:           server.seat.keyboard.handleKey,
		Modifiers:     server.seat.keyboard.handleModifiers,
		PointerMotion: server.seat.pointer.handleMotion,
		PointerButton: server.seat.pointer.handleButton,
		PointerAxis:   server.seat.pointer.handleAxis,
	}
}

// Headless is a backend with no hardware behind it: one fixed-size
// output paced by a timer. It reports keyboard and pointer
// capabilities so that seat plumbing stays honest, but no events
// ever arrive on its own.
type Headless struct {
	loop    *poll.Loop
	handler BackendHandler
	size    geom.Point[int32]

	timerFD int
}

func NewHeadless(loop *poll.Loop, handler BackendHandler, size geom.Point[int32]) *Headless {
	return &Headless{
		loop:    loop,
		handler: handler,
		size:    size,
		timerFD: -1,
	}
}

func (b *Headless) Start() error {
	b.handler.Capabilities(protocol.SeatCapabilityKeyboard | protocol.SeatCapabilityPointer)
	b.handler.OutputAdded(b.size)

	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return fmt.Errorf("timerfd: %w", err)
	}

	// 60 Hz vsync stand-in.
	frame := unix.Timespec{Nsec: 16_666_667}
	err = unix.TimerfdSettime(fd, 0, &unix.ItimerSpec{Interval: frame, Value: frame}, nil)
	if err != nil {
		unix.Close(fd)
		return fmt.Errorf("timerfd_settime: %w", err)
	}

	err = b.loop.AddFD(fd, poll.In, func(fd int, events uint32) {
		var expirations uint64
		buf := (*[8]byte)(unsafe.Pointer(&expirations))
		if _, err := unix.Read(fd, buf[:]); err != nil {
			return
		}
		b.handler.Frame()
	})
	if err != nil {
		unix.Close(fd)
		return err
	}

	b.timerFD = fd
	return nil
}

func (b *Headless) Close() error {
	if b.timerFD >= 0 {
		b.loop.RemoveFD(b.timerFD)
		unix.Close(b.timerFD)
		b.timerFD = -1
	}
	b.handler.OutputRemoved()
	return nil
}

func (b *Headless) Paces() bool {
	return true
}
