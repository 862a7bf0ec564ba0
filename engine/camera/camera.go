package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// orbitCamera is the implementation of the Camera interface.
// The eye sits on a sphere around target described by radius, azimuth and elevation.
type orbitCamera struct {
	mu sync.Mutex

	target    mgl32.Vec3
	radius    float32
	azimuth   float32 // around +Y, 0 looks down -Z
	elevation float32 // above the horizontal plane

	minRadius, maxRadius float32
	maxElevation         float32

	fov, aspect, near, far float32

	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
}

// Camera is an orbit camera producing view and projection matrices for the viewer.
type Camera interface {
	// Orbit rotates the eye around the target.
	//
	// Parameters:
	//   - dAzimuth: change of the horizontal angle in radians
	//   - dElevation: change of the vertical angle in radians, clamped short of the poles
	Orbit(dAzimuth, dElevation float32)

	// OrbitStep rotates by the configured keyboard step.
	//
	// Parameters:
	//   - right: steps around +Y (negative for left)
	//   - up: steps toward the upper pole (negative for down)
	OrbitStep(right, up int)

	// Drag rotates from a cursor delta in screen pixels, scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - dx, dy: cursor movement in pixels
	Drag(dx, dy float32)

	// Zoom moves the eye toward (positive delta) or away from the target, within the radius bounds.
	//
	// Parameters:
	//   - delta: zoom steps, scaled by the zoom speed
	Zoom(delta float32)

	// Frame centers the target on the box and sets the radius and clip planes so the box fits.
	//
	// Parameters:
	//   - lo, hi: opposite corners of the box
	Frame(lo, hi mgl32.Vec3)

	// SetAspect sets the projection aspect ratio. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// Eye returns the eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye in world space
	Eye() mgl32.Vec3

	// View returns the look-at matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	View() mgl32.Mat4

	// Projection returns the perspective matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	Projection() mgl32.Mat4

	// ViewProjection returns Projection() * View().
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjection() mgl32.Mat4
}

var _ Camera = &orbitCamera{}

// NewCamera creates an orbit camera looking at the origin from +Z, slightly above.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &orbitCamera{
		radius:           5,
		elevation:        float32(math.Pi / 8),
		minRadius:        0.01,
		maxRadius:        1e5,
		maxElevation:     float32(math.Pi/2 - 0.01),
		fov:              mgl32.DegToRad(45),
		aspect:           1,
		near:             0.01,
		far:              100,
		orbitSpeed:       0.05,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.1,
	}
	for _, option := range options {
		option(c)
	}
	c.radius = mgl32.Clamp(c.radius, c.minRadius, c.maxRadius)
	return c
}

func (c *orbitCamera) Orbit(dAzimuth, dElevation float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth = float32(math.Mod(float64(c.azimuth+dAzimuth), 2*math.Pi))
	c.elevation = mgl32.Clamp(c.elevation+dElevation, -c.maxElevation, c.maxElevation)
}

func (c *orbitCamera) OrbitStep(right, up int) {
	c.Orbit(float32(right)*c.orbitSpeed, float32(up)*c.orbitSpeed)
}

func (c *orbitCamera) Drag(dx, dy float32) {
	c.Orbit(-dx*c.mouseSensitivity, dy*c.mouseSensitivity)
}

// Zoom scales the radius multiplicatively so steps feel the same at every distance.
func (c *orbitCamera) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	factor := float32(math.Pow(float64(1-c.zoomSpeed), float64(delta)))
	c.radius = mgl32.Clamp(c.radius*factor, c.minRadius, c.maxRadius)
}

func (c *orbitCamera) Frame(lo, hi mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.target = lo.Add(hi).Mul(0.5)
	extent := hi.Sub(lo).Len() / 2
	if extent <= 0 {
		extent = 1
	}
	c.radius = mgl32.Clamp(extent/float32(math.Sin(float64(c.fov/2))), c.minRadius, c.maxRadius)
	c.near = max(c.radius/1000, 1e-4)
	c.far = c.radius + extent*4
}

func (c *orbitCamera) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *orbitCamera) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye()
}

func (c *orbitCamera) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mgl32.LookAtV(c.eye(), c.target, mgl32.Vec3{0, 1, 0})
}

func (c *orbitCamera) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
}

func (c *orbitCamera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// eye converts the spherical coordinates to a world position. Caller must hold the mutex.
func (c *orbitCamera) eye() mgl32.Vec3 {
	cosE := float32(math.Cos(float64(c.elevation)))
	sinE := float32(math.Sin(float64(c.elevation)))
	cosA := float32(math.Cos(float64(c.azimuth)))
	sinA := float32(math.Sin(float64(c.azimuth)))
	return c.target.Add(mgl32.Vec3{cosE * sinA, sinE, cosE * cosA}.Mul(c.radius))
}
