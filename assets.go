package card

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Yeicor/flowercard/internal/config"
	"github.com/cenkalti/backoff/v5"
	"github.com/fogleman/fauxgl"
	"github.com/fsnotify/fsnotify"
)

// builtinMeshCells is the marching cubes resolution of each built-in model part.
const builtinMeshCells = 96

var errUnknownModelFormat = errors.New("unknown model format (supported: .stl, .obj)")

// modelSource resolves model paths into normalized meshes.
type modelSource struct {
	builtinCells int
	maxTries     uint
	defaultColor fauxgl.Color
}

func newModelSource() *modelSource {
	return &modelSource{
		builtinCells: builtinMeshCells,
		maxTries:     5,
		defaultColor: fauxgl.HexColor("#F27CA6"),
	}
}

// Resolve builds the built-in flower or loads the file at path, retrying transient failures
// (files are often caught half-written while watching).
func (s *modelSource) Resolve(ctx context.Context, path string) (*fauxgl.Mesh, error) {
	var mesh *fauxgl.Mesh
	var err error
	if path == config.BuiltinModel {
		mesh, err = buildFlowerMesh(s.builtinCells)
	} else {
		mesh, err = backoff.Retry(ctx, func() (*fauxgl.Mesh, error) {
			return s.loadMeshFile(path)
		}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(s.maxTries))
	}
	if err != nil {
		return nil, err
	}
	normalizeMesh(mesh)
	return mesh, nil
}

func (s *modelSource) loadMeshFile(path string) (*fauxgl.Mesh, error) {
	var load func(string) (*fauxgl.Mesh, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		load = fauxgl.LoadSTL
	case ".obj":
		load = fauxgl.LoadOBJ
	default:
		return nil, backoff.Permanent(fmt.Errorf("%s: %w", path, errUnknownModelFormat))
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, backoff.Permanent(err)
	}
	mesh, err := load(path)
	if err != nil {
		return nil, err
	}
	if len(mesh.Triangles) == 0 {
		return nil, fmt.Errorf("%s: no triangles", path)
	}
	for _, t := range mesh.Triangles {
		t.V1.Color, t.V2.Color, t.V3.Color = s.defaultColor, s.defaultColor, s.defaultColor
	}
	mesh.SmoothNormalsThreshold(fauxgl.Radians(30))
	return mesh, nil
}

// normalizeMesh centers the mesh at the origin, fitting it inside a cube of side 1.2.
func normalizeMesh(mesh *fauxgl.Mesh) {
	mesh.BiUnitCube()
	mesh.Transform(fauxgl.Scale(fauxgl.V(0.6, 0.6, 0.6)))
}

// reloadMesh resolves the configured model and publishes it. Concurrent reloads are serialized.
func (c *Card) reloadMesh() {
	c.loadingLock.Lock()
	defer c.loadingLock.Unlock()
	path := c.cfg.Model.Path
	startTime := time.Now()
	mesh, err := c.assets.Resolve(c.ctx, path)
	if err != nil {
		log.Println("[Assets] Failed to load model", path+":", err)
		return
	}
	c.meshLock.Lock()
	c.mesh = mesh
	c.meshVersion++
	c.meshLock.Unlock()
	log.Println("[Assets] Loaded model", path, "with", len(mesh.Triangles), "triangles in", time.Since(startTime))
}

// reloadLetter replaces the letter text with the one in the config file.
func (c *Card) reloadLetter() {
	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		log.Println("[Assets] Ignoring config change:", err)
		return
	}
	c.stateLock.Lock()
	c.letterTitle, c.letterLines = cfg.Letter.Title, cfg.Letter.Lines
	c.stateLock.Unlock()
	log.Println("[Assets] Reloaded letter from", c.cfgPath)
}

// watch reloads the model file and the letter text on changes, until the returned stop function is called.
func (c *Card) watch() (func(), error) {
	watcher, err := newFsWatcher()
	if err != nil {
		return nil, err
	}
	modelPath, cfgPath := "", ""
	if c.cfg.Model.Path != config.BuiltinModel {
		modelPath = filepath.Clean(c.cfg.Model.Path)
	}
	if c.cfgPath != "" {
		cfgPath = filepath.Clean(c.cfgPath)
	}
	// Watch the directories: editors usually replace files instead of writing them in place
	for _, p := range []string{modelPath, cfgPath} {
		if p == "" {
			continue
		}
		if err = watcher.Add(filepath.Dir(p)); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				switch filepath.Clean(ev.Name) {
				case modelPath:
					go c.reloadMesh()
				case cfgPath:
					c.reloadLetter()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Println("[Assets] Watcher error:", err)
			case <-c.ctx.Done():
				return
			}
		}
	}()
	return func() { _ = watcher.Close() }, nil
}
