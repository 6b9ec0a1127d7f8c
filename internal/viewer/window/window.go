// Package window runs the desktop viewer in a raylib window.
package window

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/jengatower/internal/viewer"
	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/render/memory"
	"github.com/matzehuels/jengatower/pkg/tower"
	"github.com/matzehuels/jengatower/pkg/tower/blocks"
)

// Options configures the window.
type Options struct {
	Width  int32
	Height int32
	FPS    int32
	Title  string
	Logger *log.Logger
}

var (
	colBackground = rl.NewColor(18, 18, 22, 255)
	colGround     = rl.NewColor(40, 40, 46, 255)
	colText       = rl.NewColor(220, 220, 220, 255)
	colTextDim    = rl.NewColor(140, 140, 140, 255)
	colHighlight  = rl.NewColor(255, 255, 255, 255)
)

var keyActions = map[int32]viewer.Action{
	rl.KeySpace: viewer.ActionRebuild,
	rl.KeyEnter: viewer.ActionTogglePhysics,
	rl.KeyTab:   viewer.ActionNextView,
	rl.KeyO:     viewer.ActionFlipOrder,
}

var presetKeys = []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour}

// Run opens the window and drives eng until the window is closed or ctx is
// canceled. scene must be the scene eng was built on.
func Run(ctx context.Context, eng *tower.Engine, scene *memory.Scene, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Title == "" {
		opts.Title = "jengatower"
	}

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(opts.Width, opts.Height, opts.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(opts.FPS)
	rl.SetExitKey(rl.KeyEscape)

	ctrl := viewer.NewController(eng, opts.Logger)
	orbit := viewer.OrbitFrom(viewer.Presets[0])
	camera := rl.Camera3D{Up: rl.NewVector3(0, 1, 0), Fovy: 45, Projection: rl.CameraPerspective}

	opts.Logger.Info("viewer started", "blocks", eng.Blocks().Len(), "key", eng.Key())
	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			break
		}

		handleInput(ctrl, &orbit)
		eng.Tick(time.Duration(float64(rl.GetFrameTime()) * float64(time.Second)))

		camera.Position = vec3(orbit.Position())
		camera.Target = vec3(orbit.Target)

		ray := rl.GetScreenToWorldRay(rl.GetMousePosition(), camera)
		hovered, hover := viewer.Pick(eng.Blocks(),
			mgl64.Vec3{float64(ray.Position.X), float64(ray.Position.Y), float64(ray.Position.Z)},
			mgl64.Vec3{float64(ray.Direction.X), float64(ray.Direction.Y), float64(ray.Direction.Z)})

		rl.BeginDrawing()
		rl.ClearBackground(colBackground)

		rl.BeginMode3D(camera)
		rl.DrawPlane(rl.NewVector3(0, 0, 0), rl.NewVector2(80, 80), colGround)
		drawScene(scene, eng.Blocks(), hovered, hover)
		rl.EndMode3D()

		drawHUD(eng, ctrl)
		if hover {
			if meta, ok := eng.Blocks().Meta(hovered); ok {
				drawTooltip(viewer.Tooltip(meta), meta.Color)
			}
		}
		rl.EndDrawing()
	}
	opts.Logger.Info("viewer closed")
	return nil
}

func handleInput(ctrl *viewer.Controller, orbit *viewer.Orbit) {
	for key, action := range keyActions {
		if rl.IsKeyPressed(key) {
			ctrl.Apply(action)
		}
	}
	for i, key := range presetKeys {
		if rl.IsKeyPressed(key) && i < len(viewer.Presets) {
			*orbit = viewer.OrbitFrom(viewer.Presets[i])
		}
	}

	// Holding a mouse button slows the simulation down.
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		ctrl.Apply(viewer.ActionSlowMotionOn)
	}
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		ctrl.Apply(viewer.ActionSlowMotionOff)
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		d := rl.GetMouseDelta()
		orbit.Rotate(-float64(d.X)*0.005, float64(d.Y)*0.005)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		orbit.Zoom(1 - float64(wheel)*0.1)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		orbit.Pan(0.5)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		orbit.Pan(-0.5)
	}
}

func drawScene(scene *memory.Scene, m *blocks.Manager, hovered blocks.ID, hover bool) {
	var hoverMesh uint64
	if hover {
		if h, ok := m.Mesh(hovered); ok {
			hoverMesh = uint64(h)
		}
	}
	for _, h := range scene.Handles() {
		box, ok := scene.Box(h)
		if !ok {
			continue
		}
		axis, angle := viewer.AxisAngle(box.Transform.Rotation)
		p := box.Transform.Position
		size := vec3(box.Size)

		rl.PushMatrix()
		rl.Translatef(float32(p[0]), float32(p[1]), float32(p[2]))
		rl.Rotatef(float32(angle), float32(axis[0]), float32(axis[1]), float32(axis[2]))
		rl.DrawCubeV(rl.NewVector3(0, 0, 0), size, color(box.Color))
		wire := colBackground
		if hover && uint64(h) == hoverMesh {
			wire = colHighlight
		}
		rl.DrawCubeWiresV(rl.NewVector3(0, 0, 0), size, wire)
		rl.PopMatrix()
	}
}

func drawHUD(eng *tower.Engine, ctrl *viewer.Controller) {
	y := int32(10)
	for i, line := range viewer.HUD(eng.Key(), eng.Snapshot(), ctrl.Status()) {
		size := int32(16)
		if i == 0 {
			size = 20
		}
		rl.DrawText(line, 10, y, size, colText)
		y += size + 6
	}

	// Region legend.
	y += 8
	for _, r := range dataset.Regions {
		rl.DrawRectangle(10, y+2, 12, 12, color(r.Color()))
		rl.DrawText(r.String(), 28, y, 14, colTextDim)
		y += 18
	}

	rl.DrawText(viewer.Help, 10, int32(rl.GetScreenHeight())-24, 14, colTextDim)
}

func drawTooltip(lines []string, c colorful.Color) {
	const (
		fontSize = 14
		padding  = 8
		lineGap  = 4
	)
	mouse := rl.GetMousePosition()
	width := int32(0)
	for _, l := range lines {
		width = max(width, rl.MeasureText(l, fontSize))
	}
	w := width + 2*padding
	h := int32(len(lines))*(fontSize+lineGap) + 2*padding
	x := min(int32(mouse.X)+16, int32(rl.GetScreenWidth())-w-4)
	y := min(int32(mouse.Y)+16, int32(rl.GetScreenHeight())-h-4)

	rl.DrawRectangle(x, y, w, h, rl.NewColor(20, 25, 30, 230))
	rl.DrawRectangleLines(x, y, w, h, color(c))
	ty := y + padding
	for i, l := range lines {
		col := colTextDim
		if i == 0 {
			col = colText
		}
		rl.DrawText(l, x+padding, ty, fontSize, col)
		ty += fontSize + lineGap
	}
}

func vec3(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v[0]), float32(v[1]), float32(v[2]))
}

func color(c colorful.Color) rl.Color {
	r, g, b := c.Clamped().RGB255()
	return rl.NewColor(r, g, b, 255)
}
