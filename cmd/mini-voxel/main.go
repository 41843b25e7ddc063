package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"mini-voxel/internal/app"
	"mini-voxel/internal/config"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	logger := log.New(os.Stderr, "[main] ", log.LstdFlags|log.Lmicroseconds)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Fatalf("config: %v", err)
		}
	}

	if err := glfw.Init(); err != nil {
		logger.Fatalf("glfw init: %v", err)
	}

	window, err := setupWindow(cfg.Window)
	if err != nil {
		glfw.Terminate()
		logger.Fatalf("window: %v", err)
	}
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		logger.Fatalf("gl init: %v", err)
	}
	logger.Printf("OpenGL %s", gl.GoStr(gl.GetString(gl.VERSION)))

	a := app.New(window, cfg)
	if err := a.Init(); err != nil {
		a.Close()
		glfw.Terminate()
		logger.Fatalf("init: %v", err)
	}

	// Signals are handled on closer's goroutine; GL teardown has to happen
	// here on the locked main thread, so the hook hands over and waits.
	exitC := make(chan struct{}, 1)
	doneC := make(chan struct{}, 1)
	closer.Bind(func() {
		exitC <- struct{}{}
		<-doneC
		logger.Println("bye")
	})

	a.Run(exitC)
	a.Close()
	window.Destroy()
	glfw.Terminate()
	doneC <- struct{}{}
	closer.Close()
}

func setupWindow(cfg config.Window) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return window, nil
}
