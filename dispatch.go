package main

import (
	"deedles.dev/taki/protocol"
	"deedles.dev/taki/wire"
)

type requestHandler func(c *Client, obj *Object, r *wire.Reader) error

// requestHandlers is the static two-level dispatch table. Both
// indices are bounds-checked before use; an empty row means the
// interface has no requests.
var requestHandlers = [protocol.NumInterfaces][]requestHandler{
	protocol.Display: {
		displaySync,
		displayGetRegistry,
	},
	protocol.Registry: {
		registryBind,
	},
	protocol.Callback: {},
	protocol.Compositor: {
		compositorCreateSurface,
		compositorCreateRegion,
	},
	protocol.Shm: {
		shmCreatePool,
	},
	protocol.ShmPool: {
		shmPoolCreateBuffer,
		shmPoolDestroy,
		shmPoolResize,
	},
	protocol.Buffer: {
		bufferDestroy,
	},
	protocol.Surface: {
		surfaceDestroy,
		surfaceAttach,
		surfaceDamage,
		surfaceFrame,
		surfaceSetOpaqueRegion,
		surfaceSetInputRegion,
		surfaceCommit,
		surfaceSetBufferTransform,
		surfaceSetBufferScale,
		surfaceDamageBuffer,
		surfaceOffset,
	},
	protocol.Region: {
		regionDestroy,
		regionAdd,
		regionSubtract,
	},
	protocol.Seat: {
		seatGetPointer,
		seatGetKeyboard,
		seatGetTouch,
		seatRelease,
	},
	protocol.Keyboard: {
		keyboardRelease,
	},
	protocol.Pointer: {
		pointerSetCursor,
		pointerRelease,
	},
	protocol.Touch: {
		touchRelease,
	},
	protocol.WmBase: {
		wmBaseDestroy,
		wmBaseCreatePositioner,
		wmBaseGetXDGSurface,
		wmBasePong,
	},
	protocol.XDGSurface: {
		xdgSurfaceDestroy,
		xdgSurfaceGetToplevel,
		xdgSurfaceGetPopup,
		xdgSurfaceSetWindowGeometry,
		xdgSurfaceAckConfigure,
	},
	protocol.XDGToplevel: {
		xdgToplevelDestroy,
		xdgToplevelSetParent,
		xdgToplevelSetTitle,
		xdgToplevelSetAppID,
		xdgToplevelShowWindowMenu,
		xdgToplevelMove,
		xdgToplevelResize,
		xdgToplevelSetMaxSize,
		xdgToplevelSetMinSize,
		xdgToplevelSetMaximized,
		xdgToplevelUnsetMaximized,
		xdgToplevelSetFullscreen,
		xdgToplevelUnsetFullscreen,
		xdgToplevelSetMinimized,
	},
	protocol.XDGPopup: {
		xdgPopupDestroy,
		xdgPopupGrab,
		xdgPopupReposition,
	},
	protocol.XDGPositioner: {
		xdgPositionerDestroy,
		xdgPositionerSetSize,
		xdgPositionerSetAnchorRect,
		xdgPositionerSetUint, // set_anchor
		xdgPositionerSetUint, // set_gravity
		xdgPositionerSetUint, // set_constraint_adjustment
		xdgPositionerSetOffset,
		xdgPositionerSetReactive,
		xdgPositionerSetParentSize,
		xdgPositionerSetParentConfigure,
	},
	protocol.DecorationManager: {
		decorationManagerDestroy,
		decorationManagerGetToplevelDecoration,
	},
	protocol.ToplevelDecoration: {
		toplevelDecorationDestroy,
		toplevelDecorationSetMode,
		toplevelDecorationUnsetMode,
	},
	protocol.Dmabuf: {
		dmabufDestroy,
		dmabufCreateParams,
		dmabufGetDefaultFeedback,
		dmabufGetSurfaceFeedback,
	},
	protocol.DmabufParams: {
		dmabufParamsDestroy,
		dmabufParamsAdd,
		dmabufParamsCreate,
		dmabufParamsCreateImmed,
	},
	protocol.DmabufFeedback: {
		dmabufFeedbackDestroy,
	},
}
