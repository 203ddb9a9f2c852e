package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"deedles.dev/taki/internal/gpu"
	"deedles.dev/taki/internal/poll"
	"deedles.dev/taki/internal/util"
	"deedles.dev/ximage/geom"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const (
	exitOK = iota
	exitInit
	exitGPU
)

type levelFlag logrus.Level

func (f *levelFlag) String() string {
	return logrus.Level(*f).String()
}

func (f *levelFlag) Set(v string) error {
	level, err := logrus.ParseLevel(v)
	if err != nil {
		return err
	}
	*f = levelFlag(level)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the config file")
	socket := flag.String("socket", "", "socket name under XDG_RUNTIME_DIR")
	logLevel := util.Flag("log-level", new(levelFlag), "log level (trace, debug, info, warn, error)")
	logFile := flag.String("log-file", "", "write logs to this file instead of stderr")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taki: %v\n", err)
		return exitInit
	}
	if *socket != "" {
		cfg.Socket = *socket
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	level := logrus.Level(*logLevel)
	if level == 0 {
		level, err = logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = logrus.InfoLevel
		}
	}
	logrus.SetLevel(level)

	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "taki: open log file: %v\n", err)
			return exitInit
		}
		defer file.Close()
		logrus.SetOutput(file)
	}

	loop, err := poll.NewLoop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "taki: %v\n", err)
		return exitInit
	}
	defer loop.Close()

	renderer, err := newRenderer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "taki: %v\n", err)
		return exitGPU
	}

	server, err := NewServer(cfg, loop, renderer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taki: %v\n", err)
		return exitInit
	}
	defer server.Close()

	if err := server.Listen(cfg.Socket); err != nil {
		fmt.Fprintf(os.Stderr, "taki: %v\n", err)
		return exitInit
	}

	backend := NewHeadless(loop, server.Handler(), geom.Pt(cfg.OutputWidth, cfg.OutputHeight))
	if err := backend.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "taki: %v\n", err)
		return exitInit
	}
	server.backend = backend
	defer backend.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, unix.SIGINT, unix.SIGTERM)
	go func() {
		<-sig
		loop.Stop()
	}()

	logrus.Info("running compositor")
	if err := loop.Run(); err != nil {
		logrus.WithError(err).Error("event loop")
		return exitInit
	}

	logrus.Info("compositor shutting down")
	return exitOK
}

// newRenderer picks the rendering context. Only the software
// renderer exists so far; a missing required GPU feature would
// surface here.
func newRenderer() (gpu.Context, error) {
	return gpu.NewSoftware(), nil
}
