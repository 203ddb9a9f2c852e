package main

import (
	"deedles.dev/taki/protocol"
	"deedles.dev/taki/wire"
	"github.com/sirupsen/logrus"
)

func displaySync(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	if _, err := c.newObject(id, protocol.Callback, 1, nil); err != nil {
		return err
	}

	c.event(id, protocol.CallbackEventDone, func(w *wire.Writer) {
		w.PutUint(0)
	})
	c.destroyObject(id)
	return nil
}

func displayGetRegistry(c *Client, obj *Object, r *wire.Reader) error {
	id, err := r.NewIDFixed()
	if err != nil {
		return err
	}
	if _, err := c.newObject(id, protocol.Registry, 1, nil); err != nil {
		return err
	}

	for _, g := range c.server.globals {
		c.sendGlobal(id, g)
	}
	return nil
}

func (c *Client) sendGlobal(registry uint32, g *Global) {
	c.event(registry, protocol.RegistryEventGlobal, func(w *wire.Writer) {
		w.PutUint(g.name)
		w.PutString(g.iface.String())
		w.PutUint(g.version)
	})
}

func registryBind(c *Client, obj *Object, r *wire.Reader) error {
	name, err := r.Uint()
	if err != nil {
		return err
	}
	id, err := r.NewID()
	if err != nil {
		return err
	}

	g, ok := c.server.findGlobal(name)
	if !ok {
		return protocolErrorf(protocol.DisplayErrorInvalidObject, "bind to unknown global %v", name)
	}
	if g.iface.String() != id.Interface {
		return protocolErrorf(protocol.DisplayErrorInvalidObject,
			"global %v is %v, bound as %q", name, g.iface, id.Interface)
	}

	version := min(id.Version, g.version)
	bound, err := c.newObject(id.ID, g.iface, version, nil)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"interface": g.iface,
		"version":   version,
		"id":        id.ID,
	}).Debug("bind global")

	g.bind(c, bound)
	return nil
}
