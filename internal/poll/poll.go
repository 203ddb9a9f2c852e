// Package poll is a small epoll reactor. Handlers run to completion
// on the loop goroutine; post-step hooks run after every iteration
// that dispatched at least one event.
package poll

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const (
	In  = unix.EPOLLIN
	Out = unix.EPOLLOUT
	Hup = unix.EPOLLHUP
	Err = unix.EPOLLERR
)

type Func func(fd int, events uint32)

type Loop struct {
	epfd     int
	fds      map[int]Func
	postStep []func()

	wakeR, wakeW *os.File
	stopped      bool
}

func NewLoop() (*Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create: %w", err)
	}

	loop := Loop{
		epfd: epfd,
		fds:  make(map[int]Func),
	}

	r, w, err := os.Pipe()
	if err != nil {
		unix.Close(epfd)
		return nil, err
	}
	loop.wakeR, loop.wakeW = r, w
	err = loop.AddFD(int(r.Fd()), In, func(fd int, events uint32) {
		var buf [8]byte
		unix.Read(fd, buf[:])
		loop.stopped = true
	})
	if err != nil {
		loop.Close()
		return nil, err
	}

	return &loop, nil
}

func (loop *Loop) Close() {
	unix.Close(loop.epfd)
	loop.wakeR.Close()
	loop.wakeW.Close()
}

// AddFD registers fd. The callback receives the ready events; HUP
// and ERR are always delivered regardless of the requested mask.
func (loop *Loop) AddFD(fd int, events uint32, fn Func) error {
	err := unix.EpollCtl(loop.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: events,
		Fd:     int32(fd),
	})
	if err != nil {
		return fmt.Errorf("epoll_ctl add %v: %w", fd, err)
	}
	loop.fds[fd] = fn
	return nil
}

// RemoveFD unregisters fd. Removing an fd that is not registered is
// a no-op.
func (loop *Loop) RemoveFD(fd int) {
	if _, ok := loop.fds[fd]; !ok {
		return
	}
	delete(loop.fds, fd)
	unix.EpollCtl(loop.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// AddPostStep registers fn to run after every loop iteration.
func (loop *Loop) AddPostStep(fn func()) {
	loop.postStep = append(loop.postStep, fn)
}

// Stop wakes the loop and makes Run return after the current
// iteration. It is the only method safe to call from another
// goroutine.
func (loop *Loop) Stop() {
	loop.wakeW.Write([]byte{0})
}

func (loop *Loop) Run() error {
	events := make([]unix.EpollEvent, 32)
	for !loop.stopped {
		n, err := unix.EpollWait(loop.epfd, events, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("epoll_wait: %w", err)
		}

		for _, ev := range events[:n] {
			// The handler for an earlier event in this batch
			// may have removed this fd.
			fn, ok := loop.fds[int(ev.Fd)]
			if !ok {
				continue
			}
			fn(int(ev.Fd), ev.Events)
		}

		for _, fn := range loop.postStep {
			fn()
		}
	}
	return nil
}
