// Package xkb is the compositor's keymap engine: it produces the
// keymap text blob distributed to clients and translates keycodes
// into symbols for the compositor's own use. The builtin engine
// carries a fixed US layout; a real xkbcommon binding can sit behind
// the same types.
//
// Keycodes follow the X11 convention and are offset by 8 from the
// evdev codes that backends report.
package xkb

import (
	"errors"
	"fmt"
	"strings"
)

type Keycode uint32

type Sym uint32

const (
	SymNone Sym = 0

	SymBackSpace Sym = 0xff08
	SymTab       Sym = 0xff09
	SymReturn    Sym = 0xff0d
	SymEscape    Sym = 0xff1b
	SymShiftL    Sym = 0xffe1
	SymShiftR    Sym = 0xffe2
	SymControlL  Sym = 0xffe3
	SymControlR  Sym = 0xffe4
	SymAltL      Sym = 0xffe9
)

var symNames = map[Sym]string{
	SymBackSpace: "BackSpace",
	SymTab:       "Tab",
	SymReturn:    "Return",
	SymEscape:    "Escape",
	SymShiftL:    "Shift_L",
	SymShiftR:    "Shift_R",
	SymControlL:  "Control_L",
	SymControlR:  "Control_R",
	SymAltL:      "Alt_L",
	Sym(' '):     "space",
}

func (s Sym) Name() string {
	if name, ok := symNames[s]; ok {
		return name
	}
	if s >= 0x21 && s < 0x80 {
		return string(rune(s))
	}
	return fmt.Sprintf("0x%04x", uint32(s))
}

type Context struct{}

func NewContext() *Context {
	return &Context{}
}

// KeymapFromString wraps a keymap text blob. The builtin engine does
// not compile keymaps: it checks only that the text starts with
// xkb_keymap and keeps it as is. Symbol lookups always use the
// builtin US table, whatever the text says.
func (ctx *Context) KeymapFromString(text string) (*Keymap, error) {
	if !strings.HasPrefix(strings.TrimSpace(text), "xkb_keymap") {
		return nil, errors.New("not an xkb keymap")
	}
	return &Keymap{text: text}, nil
}

// DefaultKeymap returns the builtin US layout.
func (ctx *Context) DefaultKeymap() *Keymap {
	return &Keymap{text: usKeymapText}
}

type Keymap struct {
	text string
}

// Text returns the keymap source in the format clients expect,
// without a trailing NUL.
func (k *Keymap) Text() string {
	return k.text
}

// Modifier bits as laid out in the builtin keymap.
const (
	ModShift uint32 = 1 << 0
	ModCaps  uint32 = 1 << 1
	ModCtrl  uint32 = 1 << 2
	ModAlt   uint32 = 1 << 3
)

// State tracks the modifier and group state of one keyboard.
type State struct {
	keymap *Keymap

	depressed, latched, locked, group uint32
}

func NewState(k *Keymap) *State {
	return &State{keymap: k}
}

func (s *State) UpdateMask(depressed, latched, locked, group uint32) {
	s.depressed = depressed
	s.latched = latched
	s.locked = locked
	s.group = group
}

func (s *State) effective() uint32 {
	return s.depressed | s.latched | s.locked
}

// Sym returns the symbol that code produces under the current
// modifier state.
func (s *State) Sym(code Keycode) Sym {
	k, ok := usKeys[code]
	if !ok {
		return SymNone
	}
	if s.effective()&(ModShift|ModCaps) != 0 && k.shifted != SymNone {
		return k.shifted
	}
	return k.plain
}

// UTF8 returns the text that code produces, or "" for keys with no
// textual meaning.
func (s *State) UTF8(code Keycode) string {
	sym := s.Sym(code)
	if sym >= 0x20 && sym < 0x80 {
		return string(rune(sym))
	}
	switch sym {
	case SymReturn:
		return "\n"
	case SymTab:
		return "\t"
	case SymBackSpace:
		return "\b"
	}
	return ""
}
