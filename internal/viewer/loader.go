package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/g3n/engine/core"
	"github.com/g3n/engine/graphic"
	"github.com/g3n/engine/loader/obj"
	"github.com/g3n/engine/math32"

	// Extra texture formats for MTL texture maps.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"objview/internal/event"
)

// LoadResult describes the outcome of an asset load. Successful loads carry
// the inserted scene node; failed loads carry the error. Results travel both
// through the returned LoadTask and through the "model-loaded" /
// "model-load-failed" bus events.
type LoadResult struct {
	URL      string
	MtlURL   string
	Node     *core.Node
	Err      error
	Warnings []string
	Elapsed  time.Duration
}

// LoadTask is the completion handle for an in-flight load.
type LoadTask struct {
	done   chan struct{}
	result *LoadResult
}

func newLoadTask() *LoadTask {
	return &LoadTask{done: make(chan struct{})}
}

// Done is closed when the load has finished, successfully or not.
func (t *LoadTask) Done() <-chan struct{} {
	return t.done
}

// Result returns the load outcome, or nil while the load is in flight.
func (t *LoadTask) Result() *LoadResult {
	select {
	case <-t.done:
		return t.result
	default:
		return nil
	}
}

// Wait blocks until the load finishes or ctx is canceled.
func (t *LoadTask) Wait(ctx context.Context) (*LoadResult, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *LoadTask) finish(r *LoadResult) {
	t.result = r
	close(t.done)
}

// LoadModel asynchronously loads a geometry-only OBJ asset from a local
// path or http(s) URL, centers it vertically and inserts it into the scene.
// Completion is observable through the returned task and the event bus.
func (v *Viewer) LoadModel(ctx context.Context, url string) *LoadTask {
	return v.load(ctx, url, "")
}

// LoadModelWithMaterials loads an OBJ asset bound to an MTL material
// library. The material source is fetched to completion strictly before the
// geometry source.
func (v *Viewer) LoadModelWithMaterials(ctx context.Context, objURL, mtlURL string) *LoadTask {
	return v.load(ctx, objURL, mtlURL)
}

func (v *Viewer) load(ctx context.Context, objURL, mtlURL string) *LoadTask {
	task := newLoadTask()
	start := time.Now()

	// Fetching and parsing are pure and run off the render thread. Scene
	// mutation is enqueued onto it; failures complete the task right here so
	// the handle resolves even when the loop is stopped or backed up.
	go func() {
		dec, err := v.decodeSources(ctx, objURL, mtlURL)
		if err != nil {
			v.finishLoad(task, failedResult(objURL, mtlURL, err, start))
			return
		}
		if err := v.enqueue(func() { v.attach(task, dec, objURL, mtlURL, start) }); err != nil {
			v.finishLoad(task, failedResult(objURL, mtlURL, fmt.Errorf("attach %s: %w", objURL, err), start))
		}
	}()
	return task
}

// decodeSources resolves both sources and parses them, consulting the
// decode cache first. Safe for concurrent use.
func (v *Viewer) decodeSources(ctx context.Context, objURL, mtlURL string) (*obj.Decoder, error) {
	key := objURL + "\x00" + mtlURL

	v.mu.Lock()
	cached, ok := v.decoded[key]
	v.mu.Unlock()
	if ok {
		return cached, nil
	}

	objPath, mtlPath, err := v.assets.fetchPair(ctx, objURL, mtlURL)
	if err != nil {
		return nil, err
	}

	dec, err := obj.Decode(objPath, mtlPath)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", objURL, err)
	}

	v.mu.Lock()
	v.decoded[key] = dec
	v.mu.Unlock()
	return dec, nil
}

// attach runs on the render thread: it builds the scene group (materials
// and textures touch GL), centers it vertically, inserts it into the scene
// root and resets the orbit pose.
func (v *Viewer) attach(task *LoadTask, dec *obj.Decoder, objURL, mtlURL string, start time.Time) {
	grp, err := dec.NewGroup()
	if err != nil {
		v.finishLoad(task, failedResult(objURL, mtlURL, fmt.Errorf("build scene group: %w", err), start))
		return
	}

	if box, ok := nodeBounds(grp); ok {
		grp.SetPositionY(centerOffsetY(box))
	}
	v.scene.Add(grp)

	v.mu.Lock()
	v.models = append(v.models, grp)
	v.mu.Unlock()

	v.resetView()

	for _, w := range dec.Warnings {
		v.log.Warn("%s: %s", objURL, w)
	}

	res := &LoadResult{
		URL:      objURL,
		MtlURL:   mtlURL,
		Node:     grp,
		Warnings: dec.Warnings,
		Elapsed:  time.Since(start),
	}
	v.log.Info("model loaded: %s (%v)", objURL, res.Elapsed)
	v.bus.Emit(event.ModelLoaded, res)
	task.finish(res)
}

// finishLoad completes a failed load. Safe to call from any goroutine.
func (v *Viewer) finishLoad(task *LoadTask, res *LoadResult) {
	if res.Err != nil {
		v.log.Error("model load failed: %s: %v", res.URL, res.Err)
		v.bus.Emit(event.ModelLoadFailed, res)
	}
	task.finish(res)
}

func failedResult(objURL, mtlURL string, err error, start time.Time) *LoadResult {
	return &LoadResult{
		URL:     objURL,
		MtlURL:  mtlURL,
		Err:     err,
		Elapsed: time.Since(start),
	}
}

// nodeBounds computes the union bounding box of all meshes under node, in
// the node's local space. Reports false when no mesh carries geometry.
func nodeBounds(node core.INode) (math32.Box3, bool) {
	var box math32.Box3
	found := false

	var walk func(core.INode)
	walk = func(n core.INode) {
		if mesh, ok := n.(*graphic.Mesh); ok {
			bb := mesh.GetGeometry().BoundingBox()
			if !found {
				box = bb
				found = true
			} else {
				box.Union(&bb)
			}
		}
		for _, child := range n.GetNode().Children() {
			walk(child)
		}
	}
	walk(node)
	return box, found
}

// centerOffsetY returns the vertical shift that puts the box's vertical
// center at y=0.
func centerOffsetY(box math32.Box3) float32 {
	return -(box.Min.Y + box.Max.Y) / 2
}
