// Package protocol enumerates the interfaces, opcodes, and enums of
// the supported subset of the Wayland protocol. Numbering follows
// the published XML; nothing here is invented.
package protocol

// Interface identifies a protocol interface. The zero value is
// reserved so that an uninitialised object is never dispatchable.
type Interface uint32

const (
	Invalid Interface = iota
	Display
	Registry
	Callback
	Compositor
	Shm
	ShmPool
	Buffer
	Surface
	Region
	Seat
	Keyboard
	Pointer
	Touch
	WmBase
	XDGSurface
	XDGToplevel
	XDGPopup
	XDGPositioner
	DecorationManager
	ToplevelDecoration
	Dmabuf
	DmabufParams
	DmabufFeedback
	NumInterfaces
)

// Info describes one interface: its advertised name, the maximum
// version the server implements, and its request count for dispatch
// bounds checking.
type Info struct {
	Name     string
	Version  uint32
	Requests int
}

var Interfaces = [NumInterfaces]Info{
	Display:            {"wl_display", 1, 2},
	Registry:           {"wl_registry", 1, 1},
	Callback:           {"wl_callback", 1, 0},
	Compositor:         {"wl_compositor", 5, 2},
	Shm:                {"wl_shm", 1, 1},
	ShmPool:            {"wl_shm_pool", 1, 3},
	Buffer:             {"wl_buffer", 1, 1},
	Surface:            {"wl_surface", 5, 11},
	Region:             {"wl_region", 1, 3},
	Seat:               {"wl_seat", 7, 4},
	Keyboard:           {"wl_keyboard", 7, 1},
	Pointer:            {"wl_pointer", 7, 2},
	Touch:              {"wl_touch", 7, 1},
	WmBase:             {"xdg_wm_base", 5, 4},
	XDGSurface:         {"xdg_surface", 5, 5},
	XDGToplevel:        {"xdg_toplevel", 5, 14},
	XDGPopup:           {"xdg_popup", 5, 3},
	XDGPositioner:      {"xdg_positioner", 5, 10},
	DecorationManager:  {"zxdg_decoration_manager_v1", 1, 2},
	ToplevelDecoration: {"zxdg_toplevel_decoration_v1", 1, 3},
	Dmabuf:             {"zwp_linux_dmabuf_v1", 4, 4},
	DmabufParams:       {"zwp_linux_buffer_params_v1", 4, 4},
	DmabufFeedback:     {"zwp_linux_dmabuf_feedback_v1", 4, 1},
}

func (i Interface) String() string {
	if i < NumInterfaces && Interfaces[i].Name != "" {
		return Interfaces[i].Name
	}
	return "unknown"
}

// Lookup resolves an interface by its advertised name.
func Lookup(name string) (Interface, bool) {
	for i, info := range Interfaces {
		if info.Name == name {
			return Interface(i), true
		}
	}
	return Invalid, false
}
