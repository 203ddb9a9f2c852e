package poll

import (
	"os"
	"testing"
)

func TestDispatchAndPostStep(t *testing.T) {
	loop, err := NewLoop()
	if err != nil {
		t.Fatalf("new loop: %v", err)
	}
	defer loop.Close()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	var got []byte
	err = loop.AddFD(int(r.Fd()), In, func(fd int, events uint32) {
		buf := make([]byte, 16)
		n, _ := r.Read(buf)
		got = append(got, buf[:n]...)
	})
	if err != nil {
		t.Fatalf("add fd: %v", err)
	}

	steps := 0
	loop.AddPostStep(func() {
		steps++
		loop.Stop()
	})

	if _, err := w.WriteString("ping"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := loop.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	if string(got) != "ping" {
		t.Errorf("handler read %q", got)
	}
	if steps == 0 {
		t.Error("post-step hook never ran")
	}
}

func TestRemoveFD(t *testing.T) {
	loop, err := NewLoop()
	if err != nil {
		t.Fatalf("new loop: %v", err)
	}
	defer loop.Close()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	fired := false
	err = loop.AddFD(int(r.Fd()), In, func(fd int, events uint32) {
		fired = true
	})
	if err != nil {
		t.Fatalf("add fd: %v", err)
	}
	loop.RemoveFD(int(r.Fd()))
	loop.RemoveFD(int(r.Fd())) // idempotent

	loop.AddPostStep(loop.Stop)
	w.WriteString("x")

	// Only the stop wakeup can end the loop; give it a nudge.
	loop.Stop()
	if err := loop.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if fired {
		t.Error("handler ran after removal")
	}
}
