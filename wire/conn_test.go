package wire

import (
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func connPair(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	a, b := NewConn(fds[0]), NewConn(fds[1])
	t.Cleanup(func() { a.Close(); b.Close() })
	return a, b
}

func TestConnRoundTrip(t *testing.T) {
	a, b := connPair(t)

	w := NewWriter()
	w.PutUint(99)
	w.PutString("ping")
	msg, err := w.Finish(7, 3)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := a.WriteMessage(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	hdr, r, err := b.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if hdr.Object != 7 || hdr.Opcode != 3 {
		t.Errorf("header = %+v", hdr)
	}
	if v, _ := r.Uint(); v != 99 {
		t.Errorf("uint = %v", v)
	}
	if s, _ := r.String(); s != "ping" {
		t.Errorf("string = %q", s)
	}
	if err := r.Done(); err != nil {
		t.Errorf("done: %v", err)
	}
}

func TestConnPassesFDs(t *testing.T) {
	a, b := connPair(t)

	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer pr.Close()
	defer pw.Close()

	w := NewWriter()
	w.PutUint(1)
	w.PutFD(int(pr.Fd()))
	msg, err := w.Finish(1, 0)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := a.WriteMessage(msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, r, err := b.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	fd, err := r.FD()
	if err != nil {
		t.Fatalf("fd: %v", err)
	}
	defer unix.Close(fd)

	// Prove the descriptor works: write into the original pipe,
	// read through the passed copy.
	if _, err := pw.WriteString("hello"); err != nil {
		t.Fatalf("pipe write: %v", err)
	}
	buf := make([]byte, 5)
	if _, err := unix.Read(fd, buf); err != nil {
		t.Fatalf("read passed fd: %v", err)
	}
	if string(buf) != "hello" {
		t.Errorf("read %q through passed fd", buf)
	}
}

func TestConnRejectsShortHeader(t *testing.T) {
	a, b := connPair(t)

	// size=7 is smaller than the header itself.
	frame := []byte{1, 0, 0, 0, 0, 0, 7, 0}
	if err := unix.Sendmsg(a.fd, frame, nil, nil, 0); err != nil {
		t.Fatalf("send: %v", err)
	}

	if _, _, err := b.ReadMessage(); err == nil {
		t.Error("size=7 message accepted")
	}
}
