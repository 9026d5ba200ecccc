package main

import (
	"context"
	"flag"
	"log"
	"runtime"

	"github.com/g3n/engine/util/logger"
	"github.com/xlab/closer"

	"objview/internal/config"
	"objview/internal/remote"
	"objview/internal/viewer"
)

func init() {
	// The GL context and the render loop live on the main OS thread.
	runtime.LockOSThread()
}

var (
	modelFlag  = flag.String("model", "", "OBJ model path or URL to load at startup")
	mtlFlag    = flag.String("mtl", "", "MTL material library path or URL for -model")
	widthFlag  = flag.Int("width", 0, "initial window width (height follows the fixed 16:9 aspect)")
	fpsFlag    = flag.Int("fps", 0, "render loop frame rate cap (default 25)")
	titleFlag  = flag.String("title", "objview", "window title")
	remoteFlag = flag.String("remote", "", "listen address for the websocket remote channel (disabled when empty)")
	debugFlag  = flag.Bool("v", false, "enable debug logging")
)

func main() {
	flag.Parse()

	if *fpsFlag > 0 {
		config.SetFPSLimit(*fpsFlag)
	}

	v, err := viewer.New(viewer.Options{
		Title: *titleFlag,
		Width: *widthFlag,
		Debug: *debugFlag,
	})
	if err != nil {
		log.Fatalf("viewer setup failed: %v", err)
	}

	var srv *remote.Server
	if *remoteFlag != "" {
		srv = remote.New(*remoteFlag, viewerController{v}, v.Events(), logger.New("remote", logger.Default))
		if err := srv.Start(); err != nil {
			log.Fatalf("remote channel failed: %v", err)
		}
	}

	closer.Bind(func() {
		if srv != nil {
			srv.Close()
		}
		v.Stop()
		v.Dispose()
	})

	if *modelFlag != "" {
		if *mtlFlag != "" {
			v.LoadModelWithMaterials(context.Background(), *modelFlag, *mtlFlag)
		} else {
			v.LoadModel(context.Background(), *modelFlag)
		}
	}

	if err := v.Run(); err != nil {
		log.Fatalf("render loop failed: %v", err)
	}
	closer.Close()
}

// viewerController adapts the viewer to the remote channel's controller
// surface, dropping the load task handles the websocket clients have no use
// for.
type viewerController struct {
	v *viewer.Viewer
}

func (c viewerController) Load(objURL, mtlURL string) {
	if mtlURL != "" {
		c.v.LoadModelWithMaterials(context.Background(), objURL, mtlURL)
		return
	}
	c.v.LoadModel(context.Background(), objURL)
}

func (c viewerController) Show()        { c.v.Show() }
func (c viewerController) Hide()        { c.v.Hide() }
func (c viewerController) ClearModels() { c.v.ClearModels() }
func (c viewerController) Stop()        { c.v.Stop() }
