package main

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"deedles.dev/taki/internal/fimg"
	"deedles.dev/taki/internal/gpu"
	"deedles.dev/ximage/geom"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// loadWallpaper decodes the configured wallpaper once; outputs get
// their own scaled copies.
func (server *Server) loadWallpaper() {
	path := os.Getenv("WALLPAPER")
	if path == "" {
		path = server.Config.Wallpaper
	}
	if path == "" {
		return
	}

	file, err := os.Open(path)
	if err != nil {
		logrus.WithError(err).Warn("open wallpaper")
		return
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		logrus.WithError(err).Warn("decode wallpaper")
		return
	}

	server.wallpaperSrc = img
	logrus.WithFields(logrus.Fields{
		"path":   path,
		"format": format,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Info("loaded wallpaper")
}

// wallpaperFor uploads the wallpaper stretched to one output's size.
func (server *Server) wallpaperFor(size geom.Point[int32]) gpu.Image {
	if server.wallpaperSrc == nil {
		return nil
	}

	scaled := fimg.NewXRGB(image.Rect(0, 0, int(size.X), int(size.Y)))
	draw.ApproxBiLinear.Scale(scaled, scaled.Rect, server.wallpaperSrc, server.wallpaperSrc.Bounds(), draw.Src, nil)

	img, err := server.gpu.CreateImage(size, int32(scaled.Stride), scaled.Pix)
	if err != nil {
		logrus.WithError(err).Warn("upload wallpaper")
		return nil
	}
	return img
}
