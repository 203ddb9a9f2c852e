package main

import (
	"deedles.dev/taki/internal/gpu"
	"deedles.dev/taki/internal/util"
	"deedles.dev/ximage/geom"
	"github.com/sirupsen/logrus"
)

// Output is one presentable display. Its frame tick is the only
// place pixels move.
type Output struct {
	server *Server

	size      geom.Point[int32]
	swapchain gpu.Swapchain
	wallpaper gpu.Image

	// frames counts successfully presented frames.
	frames uint64
}

func (server *Server) outputAdded(size geom.Point[int32]) {
	if size.X == 0 && size.Y == 0 {
		size = geom.Pt[int32](1280, 720)
	}

	swapchain, err := server.gpu.CreateSwapchain(size)
	if err != nil {
		logrus.WithError(err).Error("create swapchain")
		return
	}

	out := Output{
		server:    server,
		size:      size,
		swapchain: swapchain,
	}
	out.wallpaper = server.wallpaperFor(size)
	server.outputs = append(server.outputs, &out)

	logrus.WithFields(logrus.Fields{"width": size.X, "height": size.Y}).Info("output added")
}

func (server *Server) outputRemoved() {
	if len(server.outputs) == 0 {
		return
	}
	out := server.outputs[0]
	out.destroy()
	logrus.Info("output removed")
}

func (out *Output) destroy() {
	if out.wallpaper != nil {
		out.server.gpu.DestroyImage(out.wallpaper)
		out.wallpaper = nil
	}
	if out.swapchain != nil {
		out.swapchain.Destroy()
		out.swapchain = nil
	}
	out.server.outputs = util.Remove(out.server.outputs, out)
	if out.server.seat.pointer.output == out {
		out.server.seat.pointer.output = nil
	}
}

// frame runs one tick: acquire, compose, present, then pay out the
// frame callbacks of every surface that was part of the frame.
func (out *Output) frame() {
	server := out.server

	img, _, err := out.swapchain.Acquire()
	if err != nil {
		// Skip this tick; the next one retries.
		logrus.WithError(err).Debug("swapchain acquire")
		return
	}

	cmd := server.gpu.BeginCommands()
	server.gpu.Transition(cmd, img, gpu.LayoutUndefined, gpu.LayoutTransferDst)

	if out.wallpaper != nil {
		server.gpu.Blit(cmd, out.wallpaper, img, geom.Pt[int32](0, 0))
	} else {
		server.gpu.ClearColor(cmd, img, server.Config.BackgroundColor())
	}

	composited := out.compose(cmd, img)

	server.gpu.Transition(cmd, img, gpu.LayoutTransferDst, gpu.LayoutPresentSrc)
	server.gpu.SubmitCommands(cmd)
	server.gpu.QueueWaitIdle()

	if err := out.swapchain.Present(img); err != nil {
		logrus.WithError(err).Error("present")
		return
	}
	out.frames++

	time := server.timeMs()
	for _, s := range composited {
		s.fireFrames(time)
	}
}

// compose records the surface blits in z-order and reports which
// surfaces made it into the frame.
func (out *Output) compose(cmd gpu.Cmd, dst gpu.Image) []*Surface {
	server := out.server

	var composited []*Surface
	for _, s := range server.surfaces {
		if s.image == nil {
			// Surfaces with armed callbacks still get paced
			// even when there is nothing to draw for them.
			if len(s.frames) > 0 {
				composited = append(composited, s)
			}
			continue
		}
		server.gpu.Blit(cmd, s.image, dst, geom.Pt[int32](0, 0))
		composited = append(composited, s)
	}
	return composited
}
