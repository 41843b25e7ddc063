package app

import (
	"fmt"
	"log"
	"time"

	"mini-voxel/internal/config"
	"mini-voxel/internal/graphics"
	"mini-voxel/internal/input"
	"mini-voxel/internal/physics"
	"mini-voxel/internal/profiling"
	"mini-voxel/internal/registry"
	"mini-voxel/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	orbitSpeed = 1.5  // radians per second
	zoomSpeed  = 24.0 // blocks per second

	maxPickDistance = 512
)

// App owns everything the viewer needs for one window: GL resources, the
// world and the frame loop state.
type App struct {
	cfg    config.Config
	window *glfw.Window
	logger *log.Logger

	input   *input.InputManager
	camera  *graphics.Camera
	shader  *graphics.Shader
	texture uint32
	backend *graphics.GLBackend

	registry *registry.Registry
	world    *world.World
	preset   world.FlatPreset

	fpsLimiter *FPSLimiter
	lastTime   time.Time
	slowFrame  time.Duration
}

func New(window *glfw.Window, cfg config.Config) *App {
	width, height := window.GetFramebufferSize()
	return &App{
		cfg:        cfg,
		window:     window,
		logger:     newLogger("app"),
		input:      input.NewInputManager(),
		camera:     graphics.NewCamera(width, height),
		preset:     PresetFromConfig(cfg.Preset),
		fpsLimiter: NewFPSLimiter(),
		slowFrame:  time.Duration(cfg.Render.SlowFrameMs) * time.Millisecond,
	}
}

// Init creates the GL resources, loads block types, builds the world and
// places the configured preset. The GL context must be current.
func (a *App) Init() error {
	var err error
	if a.shader, err = loadShader(a.cfg.Assets.Shaders); err != nil {
		return fmt.Errorf("shader: %w", err)
	}
	if a.texture, err = loadAtlas(a.cfg.Assets.Atlas); err != nil {
		return fmt.Errorf("atlas: %w", err)
	}
	a.backend = graphics.NewGLBackend(a.shader, a.texture)

	if a.registry, err = LoadRegistry(a.cfg.Assets.BlockTypes); err != nil {
		return err
	}
	a.logger.Printf("%d block types: %v", a.registry.Len(), a.registry.Names())

	if a.world, err = world.New(WorldOptions(a.cfg.World, newLogger("world"))); err != nil {
		return err
	}
	placed, err := a.preset.Apply(a.world, a.registry)
	if err != nil {
		return fmt.Errorf("preset: %w", err)
	}
	a.logger.Printf("preset placed %d blocks in %d chunks", placed, len(a.world.Chunks()))

	a.camera.Target = a.presetCenter()
	config.SetFPSLimit(a.cfg.Render.FPSLimit)

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	a.input.SetKeyCallback(a.window)
	a.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
		a.camera.SetViewport(width, height)
	})
	return nil
}

func (a *App) presetCenter() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(a.preset.OriginX) + float32(a.preset.SizeX)/2,
		float32(a.preset.Top()) + 1,
		float32(a.preset.OriginZ) + float32(a.preset.SizeZ)/2,
	}
}

// Run drives the frame loop until the window closes or exit fires.
func (a *App) Run(exit <-chan struct{}) {
	a.lastTime = time.Now()
	for !a.window.ShouldClose() {
		select {
		case <-exit:
			return
		default:
		}
		a.tick()
	}
}

func (a *App) tick() {
	profiling.ResetFrame()
	start := time.Now()
	dt := float32(start.Sub(a.lastTime).Seconds())
	a.lastTime = start

	glfw.PollEvents()
	a.handleInput(dt)

	gl.ClearColor(0.55, 0.75, 0.95, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	a.world.FlushChunks(a.backend)
	a.world.DrawChunks(a.backend, a.camera.Transform())
	a.window.SwapBuffers()

	if elapsed := time.Since(start); a.slowFrame > 0 && elapsed > a.slowFrame {
		a.logger.Printf("Slow frame: %v. Top tasks: %s", elapsed, profiling.TopN(5))
	}

	a.input.PostUpdate()
	a.fpsLimiter.Wait()
}

func (a *App) handleInput(dt float32) {
	im := a.input
	if im.JustPressed(input.ActionQuit) {
		a.window.SetShouldClose(true)
	}
	if im.JustPressed(input.ActionToggleProfiling) {
		a.logger.Printf("chunks %v; queued rebuilds %d; frame: %s",
			a.world.Stats(), a.world.QueuedRebuilds(), profiling.TopN(8))
	}
	if im.JustPressed(input.ActionRemoveTop) {
		a.removeTop()
	}
	if im.JustPressed(input.ActionAddTop) {
		a.addTop()
	}

	var yaw, pitch, zoom float32
	if im.IsActive(input.ActionOrbitLeft) {
		yaw -= orbitSpeed * dt
	}
	if im.IsActive(input.ActionOrbitRight) {
		yaw += orbitSpeed * dt
	}
	if im.IsActive(input.ActionOrbitUp) {
		pitch += orbitSpeed * dt
	}
	if im.IsActive(input.ActionOrbitDown) {
		pitch -= orbitSpeed * dt
	}
	if im.IsActive(input.ActionZoomIn) {
		zoom -= zoomSpeed * dt
	}
	if im.IsActive(input.ActionZoomOut) {
		zoom += zoomSpeed * dt
	}
	a.camera.Orbit(yaw, pitch)
	a.camera.Zoom(zoom)
}

// targetColumn is the column under the center of the screen, or the preset
// origin column when the view ray hits nothing. ok is false when the ray kept
// running into a chunk being rebuilt.
func (a *App) targetColumn() (x, z int, ok bool) {
	eye := a.camera.Eye()
	dir := a.camera.Target.Sub(eye)
	return pickColumn(func() physics.RaycastResult {
		return physics.Raycast(eye, dir, 0, maxPickDistance, a.world)
	}, a.preset.OriginX, a.preset.OriginZ)
}

// pickColumn casts once more when the first ray is blocked by a busy chunk.
func pickColumn(cast func() physics.RaycastResult, fallbackX, fallbackZ int) (int, int, bool) {
	hit := cast()
	if hit.Busy {
		hit = cast()
	}
	switch {
	case hit.Hit:
		return hit.Block.Origin.X, hit.Block.Origin.Z, true
	case hit.Busy:
		return 0, 0, false
	}
	return fallbackX, fallbackZ, true
}

// removeTop deletes the highest block of the target column.
func (a *App) removeTop() {
	x, z, ok := a.targetColumn()
	if !ok {
		return
	}
	top, ok := a.world.TopBlock(x, z)
	if !ok {
		return
	}
	if !top.Type.Destructible() {
		a.logger.Printf("%s at %v is indestructible", top.Type, top.Origin)
		return
	}
	if err := a.world.DelBlock(top.Origin); err == nil {
		a.logger.Printf("removed %s at %v", top.Type, top.Origin)
	}
}

// addTop stacks a grass block on the target column.
func (a *App) addTop() {
	x, z, ok := a.targetColumn()
	if !ok {
		return
	}
	y := 0
	if top, ok := a.world.TopBlock(x, z); ok {
		y = top.Origin.Y + 1
	}
	grass, err := a.registry.Lookup(registry.Grass)
	if err != nil {
		a.logger.Printf("add block: %v", err)
		return
	}
	origin := world.Coord{X: x, Y: y, Z: z}
	if err := a.world.AddBlock(world.NewBlock(origin, grass), true); err == nil {
		a.logger.Printf("added %s at %v", grass, origin)
	}
}

// Close releases the world and every GL resource. The GL context must still
// be current.
func (a *App) Close() {
	if a.world != nil {
		a.world.Deinit(a.backend)
	}
	if a.backend != nil {
		a.backend.Release()
	}
	if a.texture != 0 {
		gl.DeleteTextures(1, &a.texture)
		a.texture = 0
	}
	if a.shader != nil {
		a.shader.Delete()
	}
}
