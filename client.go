package main

import (
	"errors"
	"io"

	"deedles.dev/taki/internal/poll"
	"deedles.dev/taki/protocol"
	"deedles.dev/taki/wire"
	"github.com/sirupsen/logrus"
)

type clientState int

const (
	clientActive clientState = iota
	clientDraining
	clientClosed
)

// Client is one connected peer. Everything it owns dies with it.
type Client struct {
	server  *Server
	conn    *wire.Conn
	objects objectTable
	state   clientState

	// out holds fully assembled events awaiting the post-step
	// flush. Messages are never split.
	out []wire.Message
}

func (server *Server) addClient(fd int) {
	client := Client{
		server:  server,
		conn:    wire.NewConn(fd),
		objects: make(objectTable),
	}

	// Every connection starts with the display object at id 1.
	client.objects.add(&Object{ID: 1, Iface: protocol.Display, Version: 1})

	server.clients = append(server.clients, &client)

	err := server.loop.AddFD(fd, poll.In, func(fd int, events uint32) {
		if events&(poll.Hup|poll.Err) != 0 {
			logrus.WithField("fd", fd).Debug("client hung up")
			client.disconnect()
			return
		}
		client.readMessage()
	})
	if err != nil {
		logrus.WithError(err).Error("register client")
		client.disconnect()
		return
	}

	logrus.WithField("fd", fd).Debug("client connected")
}

// readMessage reads and dispatches exactly one message. Any failure
// past this point is fatal for this client and this client only.
func (c *Client) readMessage() {
	hdr, r, err := c.conn.ReadMessage()
	if err != nil {
		if errors.Is(err, io.EOF) {
			c.disconnect()
			return
		}
		c.abort(err)
		return
	}

	if err := c.dispatch(hdr, r); err != nil {
		c.abort(err)
	}
}

func (c *Client) dispatch(hdr wire.Header, r *wire.Reader) error {
	obj, ok := c.objects.get(hdr.Object)
	if !ok {
		return protocolErrorf(protocol.DisplayErrorInvalidObject, "request for unknown object %v", hdr.Object)
	}

	if obj.Iface >= protocol.NumInterfaces {
		return protocolErrorf(protocol.DisplayErrorInvalidMethod, "interface id %v out of range", obj.Iface)
	}
	table := requestHandlers[obj.Iface]
	if len(table) == 0 {
		return protocolErrorf(protocol.DisplayErrorInvalidMethod, "%v has no requests", obj.Iface)
	}
	if int(hdr.Opcode) >= len(table) {
		return protocolErrorf(protocol.DisplayErrorInvalidMethod,
			"opcode %v out of range for %v (0..=%v)", hdr.Opcode, obj.Iface, len(table)-1)
	}

	logrus.WithFields(logrus.Fields{
		"interface": obj.Iface,
		"object":    hdr.Object,
		"opcode":    hdr.Opcode,
		"size":      hdr.Size,
	}).Trace("dispatch")

	if err := table[hdr.Opcode](c, obj, r); err != nil {
		return err
	}

	// The header promised hdr.Size bytes; the handler must have
	// consumed exactly that many.
	return r.Done()
}

// newObject registers a client-allocated id from a new_id argument.
func (c *Client) newObject(id uint32, iface protocol.Interface, version uint32, data any) (*Object, error) {
	if id >= serverIDBase {
		return nil, protocolErrorf(protocol.DisplayErrorInvalidObject,
			"id %#x is in the server-allocated range", id)
	}
	obj := Object{ID: id, Iface: iface, Version: version, Data: data}
	if err := c.objects.add(&obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// newServerObject registers an object under a server-minted id.
func (c *Client) newServerObject(iface protocol.Interface, version uint32, data any) *Object {
	obj := Object{ID: c.server.allocServerID(), Iface: iface, Version: version, Data: data}
	c.objects.add(&obj)
	return &obj
}

// destroyObject removes an object in response to its protocol
// destructor and tells the client the id is free for reuse.
func (c *Client) destroyObject(id uint32) {
	if _, ok := c.objects.get(id); !ok {
		return
	}
	c.objects.remove(id)
	if id < serverIDBase {
		c.sendDeleteID(id)
	}
}

// event queues one event for the post-step flush.
func (c *Client) event(object uint32, opcode uint16, build func(w *wire.Writer)) {
	if c.state == clientClosed {
		return
	}
	w := wire.NewWriter()
	build(w)
	msg, err := w.Finish(object, opcode)
	if err != nil {
		logrus.WithError(err).WithField("object", object).Error("assemble event")
		return
	}
	c.out = append(c.out, msg)
}

func (c *Client) sendDeleteID(id uint32) {
	c.event(1, protocol.DisplayEventDeleteID, func(w *wire.Writer) {
		w.PutUint(id)
	})
}

// flush writes out queued events. Called from the loop's post-step
// hook; a write failure terminates the client.
func (c *Client) flush() {
	if c.state == clientClosed {
		return
	}
	for i, msg := range c.out {
		err := c.conn.WriteMessage(msg)
		msg.Dispose()
		if err != nil {
			c.dropQueued(c.out[i+1:])
			c.out = nil
			logrus.WithError(err).Debug("client write failed")
			c.disconnect()
			return
		}
	}
	c.out = c.out[:0]
}

// abort terminates the client because of a protocol violation.
func (c *Client) abort(reason error) {
	var perr *ProtocolError
	if errors.As(reason, &perr) {
		logrus.WithField("code", perr.Code).Errorf("protocol error: %v", perr.Reason)
	} else {
		logrus.WithError(reason).Error("client error")
	}
	c.disconnect()
}

// disconnect tears the client down: owned objects are destroyed,
// buffered events are dropped, the socket closes. Idempotent.
func (c *Client) disconnect() {
	if c.state == clientClosed {
		return
	}
	c.state = clientClosed
	c.dropQueued(c.out)
	c.out = nil

	c.server.loop.RemoveFD(c.conn.Fd())

	// Single teardown pass over the object table. Back-references
	// out of the table (focus, z-order, role links) are cleared by
	// the per-type destructors.
	for id, obj := range c.objects {
		c.destroyResource(obj)
		c.objects.remove(id)
	}

	c.conn.Close()
	c.server.removeClient(c)

	logrus.Debug("client disconnected")
}

// destroyResource releases the interface-specific state behind obj.
func (c *Client) destroyResource(obj *Object) {
	switch data := obj.Data.(type) {
	case *Surface:
		data.destroy()
	case *ShmPool:
		data.unref()
	case *Buffer:
		data.destroy()
	case *XDGSurface:
		data.detach()
	case *Toplevel:
		data.detach()
	case *seatResource:
		c.server.seat.removeResource(data)
	case *BufferParams:
		data.dispose()
	}
}

func (c *Client) dropQueued(msgs []wire.Message) {
	for _, msg := range msgs {
		msg.Dispose()
	}
}
