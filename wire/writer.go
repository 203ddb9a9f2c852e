package wire

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Writer assembles a single message. Arguments are appended in call
// order; Finish stamps the header once the size is known. A finished
// message is sent atomically, fds and all.
type Writer struct {
	buf   []byte
	fds   []int
	owned []int
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, HeaderSize)}
}

func (w *Writer) PutUint(v uint32) {
	w.buf = byteOrder.AppendUint32(w.buf, v)
}

func (w *Writer) PutInt(v int32) {
	w.PutUint(uint32(v))
}

func (w *Writer) PutFixed(v Fixed) {
	w.PutUint(uint32(v))
}

func (w *Writer) PutString(s string) {
	w.PutUint(uint32(len(s) + 1))
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
	for len(w.buf)%4 != 0 {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) PutArray(b []byte) {
	w.PutUint(uint32(len(b)))
	w.buf = append(w.buf, b...)
	for len(w.buf)%4 != 0 {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) PutObject(id uint32) {
	w.PutUint(id)
}

// PutFD schedules fd to ride along as ancillary data. The fd must
// stay open until the message has been sent.
func (w *Writer) PutFD(fd int) {
	w.fds = append(w.fds, fd)
}

// PutOwnedFD is PutFD for descriptors the sender is done with: the
// fd is closed once the message has been sent or dropped.
func (w *Writer) PutOwnedFD(fd int) {
	w.fds = append(w.fds, fd)
	w.owned = append(w.owned, fd)
}

// Finish stamps the header and returns the complete frame and its
// file descriptors. The Writer must not be reused afterwards.
func (w *Writer) Finish(object uint32, opcode uint16) (Message, error) {
	if len(w.buf) > MaxMessageSize {
		return Message{}, fmt.Errorf("message size %v exceeds maximum %v", len(w.buf), MaxMessageSize)
	}
	byteOrder.PutUint32(w.buf[0:], object)
	byteOrder.PutUint16(w.buf[4:], opcode)
	byteOrder.PutUint16(w.buf[6:], uint16(len(w.buf)))
	return Message{Data: w.buf, FDs: w.fds, owned: w.owned}, nil
}

// Message is a fully assembled frame ready to be written to a
// connection.
type Message struct {
	Data []byte
	FDs  []int

	owned []int
}

// Dispose closes the descriptors the message owned. Call it once,
// after the message has been sent or abandoned.
func (m Message) Dispose() {
	for _, fd := range m.owned {
		unix.Close(fd)
	}
}

func (m Message) Header() Header {
	return Header{
		Object: byteOrder.Uint32(m.Data[0:]),
		Opcode: byteOrder.Uint16(m.Data[4:]),
		Size:   byteOrder.Uint16(m.Data[6:]),
	}
}
