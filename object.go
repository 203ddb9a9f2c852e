package main

import (
	"deedles.dev/taki/protocol"
)

// serverIDBase splits the id space: ids below it belong to the
// client, ids at or above it are minted by the server.
const serverIDBase = 0xFF000000

// Object is one protocol-addressable entity owned by a client. The
// interface tag is assigned at creation and never changes.
type Object struct {
	ID      uint32
	Iface   protocol.Interface
	Version uint32

	// Data points at the interface-specific state: *Surface,
	// *ShmPool, and so on. nil for stateless objects.
	Data any
}

type objectTable map[uint32]*Object

func (t objectTable) add(obj *Object) error {
	if obj.ID == 0 {
		return protocolErrorf(protocol.DisplayErrorInvalidObject, "object id 0 is reserved")
	}
	if _, ok := t[obj.ID]; ok {
		return protocolErrorf(protocol.DisplayErrorInvalidObject, "object id %v is already in use", obj.ID)
	}
	t[obj.ID] = obj
	return nil
}

func (t objectTable) get(id uint32) (*Object, bool) {
	obj, ok := t[id]
	return obj, ok
}

// lookup resolves id and verifies its interface tag.
func (t objectTable) lookup(id uint32, iface protocol.Interface) (*Object, error) {
	obj, ok := t[id]
	if !ok {
		return nil, protocolErrorf(protocol.DisplayErrorInvalidObject, "unknown object id %v", id)
	}
	if obj.Iface != iface {
		return nil, protocolErrorf(protocol.DisplayErrorInvalidObject,
			"object %v is %v, expected %v", id, obj.Iface, iface)
	}
	return obj, nil
}

// remove deletes id. Removing an absent id is fine.
func (t objectTable) remove(id uint32) {
	delete(t, id)
}
