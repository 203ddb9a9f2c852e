package protocol

// wl_display error codes.
const (
	DisplayErrorInvalidObject  = 0
	DisplayErrorInvalidMethod  = 1
	DisplayErrorNoMemory       = 2
	DisplayErrorImplementation = 3
)

// wl_shm formats. The first two are special-cased; every other
// format is its DRM fourcc.
const (
	ShmFormatARGB8888 = 0
	ShmFormatXRGB8888 = 1
)

// wl_shm error codes.
const (
	ShmErrorInvalidFormat = 0
	ShmErrorInvalidStride = 1
	ShmErrorInvalidFD     = 2
)

// wl_seat capability bits.
const (
	SeatCapabilityPointer  = 1 << 0
	SeatCapabilityKeyboard = 1 << 1
	SeatCapabilityTouch    = 1 << 2
)

// wl_keyboard.
const (
	KeymapFormatNone  = 0
	KeymapFormatXKBv1 = 1

	KeyStateReleased = 0
	KeyStatePressed  = 1
)

// wl_pointer.
const (
	ButtonStateReleased = 0
	ButtonStatePressed  = 1

	AxisVerticalScroll   = 0
	AxisHorizontalScroll = 1
)

// xdg_wm_base error codes.
const (
	WmBaseErrorRole                = 0
	WmBaseErrorDefunctSurfaces     = 1
	WmBaseErrorInvalidSurfaceState = 4
)

// xdg_toplevel states.
const (
	ToplevelStateMaximized  = 1
	ToplevelStateFullscreen = 2
	ToplevelStateResizing   = 3
	ToplevelStateActivated  = 4
)

// xdg_toplevel wm_capabilities.
const (
	WmCapabilityWindowMenu = 1
	WmCapabilityMaximize   = 2
	WmCapabilityFullscreen = 3
	WmCapabilityMinimize   = 4
)

// Version gates for xdg_toplevel events.
const (
	ToplevelConfigureBoundsSinceVersion = 4
	ToplevelWmCapabilitiesSinceVersion  = 5
)

// zxdg_toplevel_decoration_v1 modes.
const (
	DecorationModeClientSide = 1
	DecorationModeServerSide = 2
)

// zwp_linux_buffer_params_v1 error codes.
const (
	DmabufParamsErrorAlreadyUsed       = 0
	DmabufParamsErrorPlaneIdx          = 1
	DmabufParamsErrorPlaneSet          = 2
	DmabufParamsErrorIncomplete        = 3
	DmabufParamsErrorInvalidFormat     = 4
	DmabufParamsErrorInvalidDimensions = 5
	DmabufParamsErrorOutOfBounds       = 6
	DmabufParamsErrorInvalidWlBuffer   = 7
)

// zwp_linux_buffer_params_v1 flags.
const (
	DmabufFlagYInvert = 1 << 0
)
