package main

import (
	"fmt"
	"strings"

	"deedles.dev/taki/internal/shmfile"
	"deedles.dev/taki/internal/xkb"
	"deedles.dev/taki/protocol"
	"deedles.dev/taki/wire"
	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// keySet is the per-keycode pressed bitset.
type keySet [256 / 8]byte

func (s *keySet) set(code uint32, pressed bool) {
	if code >= 256 {
		return
	}
	if pressed {
		s[code/8] |= 1 << (code % 8)
	} else {
		s[code/8] &^= 1 << (code % 8)
	}
}

func (s *keySet) get(code uint32) bool {
	return code < 256 && s[code/8]&(1<<(code%8)) != 0
}

// keys returns the pressed keycodes encoded as a wl_array.
func (s *keySet) keys() []byte {
	var buf []byte
	for code := range uint32(256) {
		if s.get(code) {
			buf = append(buf, byte(code), byte(code>>8), byte(code>>16), byte(code>>24))
		}
	}
	return buf
}

// Keyboard is the seat's one keyboard: keymap, pressed state, and
// the focused client resource, if any.
type Keyboard struct {
	seat *Seat

	keymap     *xkb.Keymap
	state      *xkb.State
	keymapFD   int
	keymapSize uint32

	pressed     keySet
	rate, delay int32

	focus        *seatResource
	focusSurface *Surface
}

func newKeyboard(seat *Seat) *Keyboard {
	kb := Keyboard{
		seat:     seat,
		keymapFD: -1,
		rate:     seat.server.Config.RepeatRate,
		delay:    seat.server.Config.RepeatDelay,
	}
	if kb.rate <= 0 {
		kb.rate = 25
	}
	if kb.delay <= 0 {
		kb.delay = 600
	}

	kb.keymap = seat.server.xkb.DefaultKeymap()
	kb.state = xkb.NewState(kb.keymap)

	// Clients get the keymap through a read-only shared file; the
	// payload includes the trailing NUL.
	payload := append([]byte(kb.keymap.Text()), 0)
	fd, err := shmfile.New(xdg.RuntimeDir, payload)
	if err != nil {
		logrus.WithError(err).Error("create keymap file, keymap event suppressed")
		return &kb
	}
	kb.keymapFD = fd
	kb.keymapSize = uint32(len(payload))

	return &kb
}

func (kb *Keyboard) destroy() {
	if kb.keymapFD >= 0 {
		unix.Close(kb.keymapFD)
		kb.keymapFD = -1
	}
}

func (kb *Keyboard) sendKeymap(res *seatResource) {
	if kb.keymapFD < 0 {
		return
	}
	res.client.event(res.id, protocol.KeyboardEventKeymap, func(w *wire.Writer) {
		w.PutUint(protocol.KeymapFormatXKBv1)
		w.PutFD(kb.keymapFD)
		w.PutUint(kb.keymapSize)
	})
}

func (kb *Keyboard) sendRepeatInfo(res *seatResource) {
	if res.version < 4 {
		return
	}
	res.client.event(res.id, protocol.KeyboardEventRepeatInfo, func(w *wire.Writer) {
		w.PutInt(kb.rate)
		w.PutInt(kb.delay)
	})
}

func (kb *Keyboard) setRepeatInfo(rate, delay int32) {
	kb.rate = rate
	kb.delay = delay
	for _, res := range kb.seat.keyboards {
		kb.sendRepeatInfo(res)
	}
}

// handleKey routes one key event from the backend. Keycodes are raw
// libinput codes; the +8 offset exists only for the keymap engine.
func (kb *Keyboard) handleKey(code uint32, pressed bool) {
	kb.pressed.set(code, pressed)
	kb.logKey(code, pressed)

	if kb.focus == nil {
		if !pressed {
			return
		}
		kb.chooseFocus()
		if kb.focus == nil {
			return
		}
	}

	server := kb.seat.server
	state := uint32(protocol.KeyStateReleased)
	if pressed {
		state = protocol.KeyStatePressed
	}
	serial := server.nextSerial()
	time := server.timeMs()
	kb.focus.client.event(kb.focus.id, protocol.KeyboardEventKey, func(w *wire.Writer) {
		w.PutUint(serial)
		w.PutUint(time)
		w.PutUint(code)
		w.PutUint(state)
	})
}

// chooseFocus is the placeholder focus policy: the first bound
// keyboard resource and the first surface. It is the single point
// of change for anything smarter.
func (kb *Keyboard) chooseFocus() {
	seat := kb.seat
	if len(seat.keyboards) == 0 || len(seat.server.surfaces) == 0 {
		return
	}

	kb.focus = seat.keyboards[0]
	kb.focusSurface = seat.server.surfaces[0]

	server := seat.server
	c := kb.focus.client

	serial := server.nextSerial()
	keys := kb.pressed.keys()
	surface := kb.focusSurface.id
	c.event(kb.focus.id, protocol.KeyboardEventEnter, func(w *wire.Writer) {
		w.PutUint(serial)
		w.PutObject(surface)
		w.PutArray(keys)
	})

	kb.sendModifiers(0, 0, 0, 0)

	logrus.WithField("surface", surface).Debug("keyboard focus")
}

func (kb *Keyboard) clearFocus() {
	if kb.focus == nil {
		return
	}
	serial := kb.seat.server.nextSerial()
	surface := uint32(0)
	if kb.focusSurface != nil {
		surface = kb.focusSurface.id
	}
	kb.focus.client.event(kb.focus.id, protocol.KeyboardEventLeave, func(w *wire.Writer) {
		w.PutUint(serial)
		w.PutObject(surface)
	})
	kb.focus = nil
	kb.focusSurface = nil
}

// handleModifiers forwards the backend's modifier state verbatim.
func (kb *Keyboard) handleModifiers(depressed, latched, locked, group uint32) {
	kb.state.UpdateMask(depressed, latched, locked, group)
	if kb.focus != nil {
		kb.sendModifiers(depressed, latched, locked, group)
	}
}

func (kb *Keyboard) sendModifiers(depressed, latched, locked, group uint32) {
	serial := kb.seat.server.nextSerial()
	kb.focus.client.event(kb.focus.id, protocol.KeyboardEventModifiers, func(w *wire.Writer) {
		w.PutUint(serial)
		w.PutUint(depressed)
		w.PutUint(latched)
		w.PutUint(locked)
		w.PutUint(group)
	})
}

// logKey names the key through the keymap engine, X11 offset and
// all. Purely diagnostic.
func (kb *Keyboard) logKey(code uint32, pressed bool) {
	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	sym := kb.state.Sym(xkb.Keycode(code + 8))
	name := sym.Name()
	utf := escapeText(kb.state.UTF8(xkb.Keycode(code + 8)))

	action := "release"
	if pressed {
		action = "press"
	}
	switch {
	case name == utf:
		logrus.Debugf("key '%v' (%#x) = %v", utf, uint32(sym), action)
	case utf != "":
		logrus.Debugf("key %v '%v' (%#x) = %v", name, utf, uint32(sym), action)
	default:
		logrus.Debugf("key %v (%#x) = %v", name, uint32(sym), action)
	}
}

func escapeText(in string) string {
	var out strings.Builder
	for _, c := range in {
		switch c {
		case '\r':
			out.WriteString(`\r`)
		case '\n':
			out.WriteString(`\n`)
		case '\b':
			out.WriteString(`\b`)
		case '\t':
			out.WriteString(`\t`)
		case '\f':
			out.WriteString(`\f`)
		default:
			if c >= 0x20 && c < 0x7F {
				out.WriteRune(c)
				continue
			}
			fmt.Fprintf(&out, `\%x`, c)
		}
	}
	return out.String()
}
