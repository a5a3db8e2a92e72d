// Package term draws the simulation into a terminal with tcell. It is the
// adapter layer that turns core render instructions into screen cells.
package term

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/signalsfoundry/impact-simulator/core"
	"github.com/signalsfoundry/impact-simulator/model"
)

// CellAspect is the height/width ratio of a terminal cell.
const CellAspect = 2.0

// effectRingRadius is the outer radius of the impact ring at scale 1, in
// scene units.
const effectRingRadius = 0.02

var (
	styleSpace     = tcell.StyleDefault.Background(tcell.ColorBlack)
	styleOcean     = tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue).Background(tcell.ColorBlack)
	styleLand      = tcell.StyleDefault.Foreground(tcell.ColorForestGreen).Background(tcell.ColorBlack)
	styleMarker    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleAsteroid  = tcell.StyleDefault.Foreground(tcell.ColorSandyBrown).Bold(true)
	styleEffect    = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0xff, 0xed, 0x85))
	styleHUD       = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkSlateGray)
	styleOrbitBox  = tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorBlack)
	styleSun       = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorBlack).Bold(true)
	styleEarthPath = tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue).Background(tcell.ColorBlack)
	styleRockPath  = tcell.StyleDefault.Foreground(tcell.ColorSandyBrown).Background(tcell.ColorBlack)
	styleHUDAccent = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0xff, 0x6b, 0x6b)).Background(tcell.ColorDarkSlateGray).Bold(true)
)

// shading ramp from dark to bright
var shades = []rune(" .:-=+*#%@")

type renderable struct {
	kind    core.RenderKind
	pos     core.Vec3
	normal  core.Vec3
	radius  float64
	scale   float64
	opacity float64
	visible bool
}

// Adapter mirrors the renderables the simulation has spawned and draws them
// with the planet. The bottom UIRows rows of the screen belong to the HUD.
type Adapter struct {
	UIRows int

	objects   map[core.Handle]*renderable
	rotationY float64
	light     core.Vec3

	earthOrbit []model.Point
	trajectory []model.Point
}

// Orbit inset size in cells.
const (
	insetCols = 26
	insetRows = 11
)

// NewAdapter constructs an adapter reserving uiRows rows for the HUD.
func NewAdapter(uiRows int) *Adapter {
	if uiRows < 0 {
		uiRows = 0
	}
	return &Adapter{
		UIRows:  uiRows,
		objects: make(map[core.Handle]*renderable),
		light:   core.Vec3{X: -0.5, Y: 0.4, Z: 1}.Normalize(),
	}
}

// Apply updates the mirrored scene. Instructions for unknown handles are
// ignored.
func (a *Adapter) Apply(instructions []core.RenderInstruction) {
	for _, in := range instructions {
		switch in.Op {
		case core.OpSpawn:
			a.objects[in.Handle] = &renderable{
				kind:    in.Kind,
				pos:     in.Position,
				normal:  in.Normal,
				radius:  in.Radius,
				scale:   nonZero(in.Scale),
				opacity: nonZero(in.Opacity),
				visible: in.Visible,
			}
		case core.OpMove:
			if o, ok := a.objects[in.Handle]; ok {
				o.pos = in.Position
			}
		case core.OpShow:
			if o, ok := a.objects[in.Handle]; ok {
				o.visible = in.Visible
			}
		case core.OpTransform:
			if o, ok := a.objects[in.Handle]; ok {
				o.scale = in.Scale
				o.opacity = in.Opacity
			}
		case core.OpRotate:
			a.rotationY = in.RotationY
		case core.OpRetire:
			delete(a.objects, in.Handle)
		}
	}
}

// Len returns how many renderables are mirrored.
func (a *Adapter) Len() int { return len(a.objects) }

// Count returns how many mirrored renderables of kind are visible.
func (a *Adapter) Count(kind core.RenderKind) int {
	n := 0
	for _, o := range a.objects {
		if o.kind == kind && o.visible {
			n++
		}
	}
	return n
}

// Viewport returns the scene area of a w x h screen.
func (a *Adapter) Viewport(w, h int) core.Viewport {
	sceneRows := h - a.UIRows
	if sceneRows < 1 {
		sceneRows = 1
	}
	return core.Viewport{Width: float64(w), Height: float64(sceneRows)}
}

// PointerFromMouse converts a tcell mouse event into a pointer event in
// cell-centre coordinates. Clicks on the HUD rows are flagged OverUI.
func (a *Adapter) PointerFromMouse(ev *tcell.EventMouse, screenHeight int) core.PointerEvent {
	x, y := ev.Position()
	return core.PointerEvent{
		X:      float64(x) + 0.5,
		Y:      float64(y) + 0.5,
		OverUI: y >= screenHeight-a.UIRows,
	}
}

// SetOrbits sets the heliocentric paths shown in the orbit inset: the
// planet's orbit and the selected asteroid's trajectory. Both empty hides
// the inset.
func (a *Adapter) SetOrbits(earth, trajectory []model.Point) {
	a.earthOrbit = append([]model.Point(nil), earth...)
	a.trajectory = append([]model.Point(nil), trajectory...)
}

// Draw renders planet and objects as seen through cam, then the orbit inset
// and the HUD lines.
// It does not call Show.
func (a *Adapter) Draw(screen tcell.Screen, cam core.Camera, planet core.Planet, hud []string) {
	w, h := screen.Size()
	cam.Viewport = a.Viewport(w, h)
	if cam.PixelAspect == 0 {
		cam.PixelAspect = CellAspect
	}

	screen.Clear()
	sceneRows := int(cam.Viewport.Height)
	for y := 0; y < sceneRows; y++ {
		for x := 0; x < w; x++ {
			r, style := a.planetCell(cam, planet, float64(x)+0.5, float64(y)+0.5)
			screen.SetContent(x, y, r, nil, style)
		}
	}

	for _, kind := range []core.RenderKind{core.KindEffect, core.KindProjectile, core.KindMarker} {
		for _, o := range a.objects {
			if o.kind == kind && o.visible {
				a.drawObject(screen, cam, o, w, sceneRows)
			}
		}
	}

	a.drawOrbits(screen, w, sceneRows)
	a.drawHUD(screen, w, h, hud)
}

func (a *Adapter) planetCell(cam core.Camera, planet core.Planet, x, y float64) (rune, tcell.Style) {
	p, ok := core.IntersectRaySphere(cam.RayThroughScreen(x, y), planet.Sphere)
	if !ok {
		return ' ', styleSpace
	}

	n := p.Sub(planet.Center).Normalize()
	lambert := math.Max(0, n.Dot(a.light))
	idx := int(math.Round(lambert * float64(len(shades)-1)))
	if idx == 0 {
		idx = 1
	}

	lat, lon := core.SurfaceLatLon(p, planet.Sphere, a.rotationY)
	style := styleOcean
	if isLand(lat, lon) {
		style = styleLand
	}
	return shades[idx], style
}

// isLand is a cheap procedural continent mask.
func isLand(lat, lon float64) bool {
	la := lat * math.Pi / 180
	lo := lon * math.Pi / 180
	v := math.Sin(3*lo)*math.Cos(2*la) + 0.6*math.Sin(5*la+lo)
	return v > 0.45
}

func (a *Adapter) drawObject(screen tcell.Screen, cam core.Camera, o *renderable, w, h int) {
	sx, sy, ok := cam.Project(o.pos)
	if !ok {
		return
	}
	cx, cy := int(math.Floor(sx)), int(math.Floor(sy))

	switch o.kind {
	case core.KindMarker:
		setCell(screen, cx, cy, w, h, 'x', styleMarker)
	case core.KindProjectile:
		rows := cellsPerUnit(cam, o.pos) * o.radius
		if rows < 1 {
			setCell(screen, cx, cy, w, h, 'o', styleAsteroid)
			return
		}
		fillEllipse(screen, sx, sy, rows, w, h, '@', styleAsteroid)
	case core.KindEffect:
		// normal points into the planet; a camera on that side sees the
		// far hemisphere.
		if o.opacity <= 0 || o.normal.Dot(cam.Position.Sub(o.pos)) > 0 {
			return
		}
		rows := math.Max(0.5, cellsPerUnit(cam, o.pos)*effectRingRadius*o.scale)
		r := shades[int(math.Ceil(o.opacity*float64(len(shades)-1)))]
		drawRing(screen, sx, sy, rows, w, h, r, styleEffect)
	}
}

// cellsPerUnit is how many screen rows one scene unit spans at p.
func cellsPerUnit(cam core.Camera, p core.Vec3) float64 {
	d := cam.Position.DistanceTo(p)
	if d == 0 {
		return 0
	}
	half := math.Tan(cam.FovYDeg * math.Pi / 360)
	return cam.Viewport.Height / 2 / (d * half)
}

func fillEllipse(screen tcell.Screen, sx, sy, rows float64, w, h int, r rune, style tcell.Style) {
	cols := rows * CellAspect
	for y := int(sy - rows); y <= int(sy+rows); y++ {
		for x := int(sx - cols); x <= int(sx+cols); x++ {
			dx := (float64(x) + 0.5 - sx) / cols
			dy := (float64(y) + 0.5 - sy) / rows
			if dx*dx+dy*dy <= 1 {
				setCell(screen, x, y, w, h, r, style)
			}
		}
	}
}

func drawRing(screen tcell.Screen, sx, sy, rows float64, w, h int, r rune, style tcell.Style) {
	cols := rows * CellAspect
	steps := int(math.Max(8, 4*(rows+cols)))
	for i := 0; i < steps; i++ {
		th := 2 * math.Pi * float64(i) / float64(steps)
		x := int(math.Floor(sx + cols*math.Cos(th)))
		y := int(math.Floor(sy + rows*math.Sin(th)))
		setCell(screen, x, y, w, h, r, style)
	}
}

func (a *Adapter) drawHUD(screen tcell.Screen, w, h int, lines []string) {
	top := h - a.UIRows
	for row := 0; row < a.UIRows; row++ {
		y := top + row
		if y < 0 {
			continue
		}
		for x := 0; x < w; x++ {
			screen.SetContent(x, y, ' ', nil, styleHUD)
		}
		if row >= len(lines) {
			continue
		}
		style := styleHUD
		if row == 0 {
			style = styleHUDAccent
		}
		x := 1
		for _, r := range lines[row] {
			if x >= w {
				break
			}
			screen.SetContent(x, y, r, nil, style)
			x++
		}
	}
}

// drawOrbits plots the orbit paths top-down (x right, y up) in a box in the
// top-right corner, scaled so the widest path fits.
func (a *Adapter) drawOrbits(screen tcell.Screen, w, h int) {
	if len(a.earthOrbit) == 0 && len(a.trajectory) == 0 {
		return
	}
	if w < insetCols+2 || h < insetRows {
		return
	}

	left := w - insetCols
	for y := 0; y < insetRows; y++ {
		for x := left; x < w; x++ {
			r := ' '
			switch {
			case x == left:
				r = '│'
			case y == insetRows-1:
				r = '─'
			}
			screen.SetContent(x, y, r, nil, styleOrbitBox)
		}
	}
	screen.SetContent(left, insetRows-1, '└', nil, styleOrbitBox)

	extent := 0.0
	for _, pts := range [][]model.Point{a.earthOrbit, a.trajectory} {
		for _, p := range pts {
			extent = math.Max(extent, math.Max(math.Abs(p.X), math.Abs(p.Y)))
		}
	}
	if !(extent > 0) || math.IsInf(extent, 0) {
		return
	}

	cx := float64(left+1) + float64(insetCols-1)/2
	cy := float64(insetRows-1) / 2
	halfCols := float64(insetCols-3) / 2
	halfRows := float64(insetRows-2) / 2
	plot := func(p model.Point, r rune, style tcell.Style) {
		x := int(math.Round(cx + p.X/extent*halfCols))
		y := int(math.Round(cy - p.Y/extent*halfRows))
		if x <= left || x >= w || y < 0 || y >= insetRows-1 {
			return
		}
		screen.SetContent(x, y, r, nil, style)
	}

	for _, p := range a.earthOrbit {
		plot(p, '·', styleEarthPath)
	}
	for _, p := range a.trajectory {
		plot(p, '•', styleRockPath)
	}
	plot(model.Point{}, '*', styleSun)
}

func setCell(screen tcell.Screen, x, y, w, h int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	screen.SetContent(x, y, r, nil, style)
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
