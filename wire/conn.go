package wire

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
	"honnef.co/go/safeish"
)

// fdQueue holds file descriptors received as ancillary data until
// the arguments that consume them are decoded.
type fdQueue struct {
	fds []int
}

func (q *fdQueue) push(fds ...int) {
	q.fds = append(q.fds, fds...)
}

func (q *fdQueue) pop() (int, bool) {
	if len(q.fds) == 0 {
		return -1, false
	}
	fd := q.fds[0]
	q.fds = q.fds[1:]
	return fd, true
}

func (q *fdQueue) drain() {
	for _, fd := range q.fds {
		unix.Close(fd)
	}
	q.fds = nil
}

// Conn is one side of a Wayland socket. It is not safe for
// concurrent use; the compositor only ever touches it from the event
// loop thread.
type Conn struct {
	fd  int
	fds fdQueue
	hdr [HeaderSize]byte
	oob [256]byte
}

func NewConn(fd int) *Conn {
	return &Conn{fd: fd}
}

func (c *Conn) Fd() int {
	return c.fd
}

func (c *Conn) Close() error {
	c.fds.drain()
	return unix.Close(c.fd)
}

// recv reads exactly len(buf) bytes, collecting any ancillary file
// descriptors into the queue. A short read is an error: the header
// already promised the bytes.
func (c *Conn) recv(buf []byte) error {
	total := 0
	for total < len(buf) {
		n, oobn, _, _, err := unix.Recvmsg(c.fd, buf[total:], c.oob[:], unix.MSG_CMSG_CLOEXEC)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return io.EOF
		}
		if oobn > 0 {
			if err := c.pushRights(c.oob[:oobn]); err != nil {
				return err
			}
		}
		total += n
	}
	return nil
}

func (c *Conn) pushRights(oob []byte) error {
	scms, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return fmt.Errorf("parse control message: %w", err)
	}
	for _, scm := range scms {
		fds, err := unix.ParseUnixRights(&scm)
		if err != nil {
			if errors.Is(err, unix.EINVAL) {
				continue
			}
			return fmt.Errorf("parse rights: %w", err)
		}
		c.fds.push(fds...)
	}
	return nil
}

// ReadMessage reads one complete message: the header, then exactly
// the number of argument bytes the header promises.
func (c *Conn) ReadMessage() (Header, *Reader, error) {
	if err := c.recv(c.hdr[:]); err != nil {
		return Header{}, nil, err
	}

	hdr := *safeish.Cast[*Header](&c.hdr[0])
	if hdr.Size < HeaderSize {
		return hdr, nil, fmt.Errorf("header size %v smaller than header", hdr.Size)
	}

	data := make([]byte, int(hdr.Size)-HeaderSize)
	if err := c.recv(data); err != nil {
		return hdr, nil, err
	}

	return hdr, &Reader{data: data, fds: &c.fds}, nil
}

// WriteMessage sends a finished message as a single frame with its
// file descriptors attached.
func (c *Conn) WriteMessage(m Message) error {
	var oob []byte
	if len(m.FDs) > 0 {
		oob = unix.UnixRights(m.FDs...)
	}
	for {
		err := unix.Sendmsg(c.fd, m.Data, oob, nil, unix.MSG_NOSIGNAL)
		if err == unix.EINTR {
			continue
		}
		return err
	}
}
