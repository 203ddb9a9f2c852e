package protocol

// Request opcodes, one block per interface.

const (
	DisplaySync        = 0
	DisplayGetRegistry = 1
)

const (
	RegistryBind = 0
)

const (
	CompositorCreateSurface = 0
	CompositorCreateRegion  = 1
)

const (
	ShmCreatePool = 0
)

const (
	ShmPoolCreateBuffer = 0
	ShmPoolDestroy      = 1
	ShmPoolResize       = 2
)

const (
	BufferDestroy = 0
)

const (
	SurfaceDestroy            = 0
	SurfaceAttach             = 1
	SurfaceDamage             = 2
	SurfaceFrame              = 3
	SurfaceSetOpaqueRegion    = 4
	SurfaceSetInputRegion     = 5
	SurfaceCommit             = 6
	SurfaceSetBufferTransform = 7
	SurfaceSetBufferScale     = 8
	SurfaceDamageBuffer       = 9
	SurfaceOffset             = 10
)

const (
	RegionDestroy  = 0
	RegionAdd      = 1
	RegionSubtract = 2
)

const (
	SeatGetPointer  = 0
	SeatGetKeyboard = 1
	SeatGetTouch    = 2
	SeatRelease     = 3
)

const (
	KeyboardRelease = 0
)

const (
	PointerSetCursor = 0
	PointerRelease   = 1
)

const (
	TouchRelease = 0
)

const (
	WmBaseDestroy          = 0
	WmBaseCreatePositioner = 1
	WmBaseGetXDGSurface    = 2
	WmBasePong             = 3
)

const (
	XDGSurfaceDestroy           = 0
	XDGSurfaceGetToplevel       = 1
	XDGSurfaceGetPopup          = 2
	XDGSurfaceSetWindowGeometry = 3
	XDGSurfaceAckConfigure      = 4
)

const (
	XDGToplevelDestroy         = 0
	XDGToplevelSetParent       = 1
	XDGToplevelSetTitle        = 2
	XDGToplevelSetAppID        = 3
	XDGToplevelShowWindowMenu  = 4
	XDGToplevelMove            = 5
	XDGToplevelResize          = 6
	XDGToplevelSetMaxSize      = 7
	XDGToplevelSetMinSize      = 8
	XDGToplevelSetMaximized    = 9
	XDGToplevelUnsetMaximized  = 10
	XDGToplevelSetFullscreen   = 11
	XDGToplevelUnsetFullscreen = 12
	XDGToplevelSetMinimized    = 13
)

const (
	XDGPopupDestroy    = 0
	XDGPopupGrab       = 1
	XDGPopupReposition = 2
)

const (
	XDGPositionerDestroy                 = 0
	XDGPositionerSetSize                 = 1
	XDGPositionerSetAnchorRect           = 2
	XDGPositionerSetAnchor               = 3
	XDGPositionerSetGravity              = 4
	XDGPositionerSetConstraintAdjustment = 5
	XDGPositionerSetOffset               = 6
	XDGPositionerSetReactive             = 7
	XDGPositionerSetParentSize           = 8
	XDGPositionerSetParentConfigure      = 9
)

const (
	DecorationManagerDestroy               = 0
	DecorationManagerGetToplevelDecoration = 1
)

const (
	ToplevelDecorationDestroy   = 0
	ToplevelDecorationSetMode   = 1
	ToplevelDecorationUnsetMode = 2
)

const (
	DmabufDestroy            = 0
	DmabufCreateParams       = 1
	DmabufGetDefaultFeedback = 2
	DmabufGetSurfaceFeedback = 3
)

const (
	DmabufParamsDestroy     = 0
	DmabufParamsAdd         = 1
	DmabufParamsCreate      = 2
	DmabufParamsCreateImmed = 3
)

const (
	DmabufFeedbackDestroy = 0
)

// Event opcodes.

const (
	DisplayEventError    = 0
	DisplayEventDeleteID = 1
)

const (
	RegistryEventGlobal       = 0
	RegistryEventGlobalRemove = 1
)

const (
	CallbackEventDone = 0
)

const (
	ShmEventFormat = 0
)

const (
	BufferEventRelease = 0
)

const (
	SeatEventCapabilities = 0
	SeatEventName         = 1
)

const (
	KeyboardEventKeymap     = 0
	KeyboardEventEnter      = 1
	KeyboardEventLeave      = 2
	KeyboardEventKey        = 3
	KeyboardEventModifiers  = 4
	KeyboardEventRepeatInfo = 5
)

const (
	PointerEventEnter  = 0
	PointerEventLeave  = 1
	PointerEventMotion = 2
	PointerEventButton = 3
	PointerEventAxis   = 4
	PointerEventFrame  = 5
)

const (
	WmBaseEventPing = 0
)

const (
	XDGSurfaceEventConfigure = 0
)

const (
	XDGToplevelEventConfigure       = 0
	XDGToplevelEventClose           = 1
	XDGToplevelEventConfigureBounds = 2
	XDGToplevelEventWmCapabilities  = 3
)

const (
	XDGPopupEventConfigure = 0
	XDGPopupEventDone      = 1
)

const (
	ToplevelDecorationEventConfigure = 0
)

const (
	DmabufEventFormat   = 0
	DmabufEventModifier = 1
)

const (
	DmabufParamsEventCreated = 0
	DmabufParamsEventFailed  = 1
)

const (
	DmabufFeedbackEventDone                = 0
	DmabufFeedbackEventFormatTable         = 1
	DmabufFeedbackEventMainDevice          = 2
	DmabufFeedbackEventTrancheDone         = 3
	DmabufFeedbackEventTrancheTargetDevice = 4
	DmabufFeedbackEventTrancheFormats      = 5
	DmabufFeedbackEventTrancheFlags        = 6
)
