package camera

// CameraBuilderOption is a functional option for configuring a Camera via NewCamera.
type CameraBuilderOption func(*orbitCamera)

// WithFov sets the vertical field of view.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *orbitCamera) {
		c.fov = fov
	}
}

// WithClip sets the near and far clip distances. Frame overrides both.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClip(near, far float32) CameraBuilderOption {
	return func(c *orbitCamera) {
		c.near = near
		c.far = far
	}
}

// WithRadius sets the initial distance from the target.
//
// Parameters:
//   - radius: the distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the radius
func WithRadius(radius float32) CameraBuilderOption {
	return func(c *orbitCamera) {
		c.radius = radius
	}
}

// WithRadiusBounds sets the zoom limits.
//
// Parameters:
//   - minRadius: closest allowed distance
//   - maxRadius: farthest allowed distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the radius bounds
func WithRadiusBounds(minRadius, maxRadius float32) CameraBuilderOption {
	return func(c *orbitCamera) {
		c.minRadius = minRadius
		c.maxRadius = maxRadius
	}
}

// WithOrbitSpeed sets the angle of one OrbitStep.
//
// Parameters:
//   - speed: radians per step
//
// Returns:
//   - CameraBuilderOption: a function that sets the orbit speed
func WithOrbitSpeed(speed float32) CameraBuilderOption {
	return func(c *orbitCamera) {
		c.orbitSpeed = speed
	}
}

// WithMouseSensitivity sets the radians per dragged pixel.
//
// Parameters:
//   - sensitivity: radians per pixel
//
// Returns:
//   - CameraBuilderOption: a function that sets the mouse sensitivity
func WithMouseSensitivity(sensitivity float32) CameraBuilderOption {
	return func(c *orbitCamera) {
		c.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the fraction of the radius removed by one zoom step. Values are kept in (0, 1).
//
// Parameters:
//   - speed: fraction per step
//
// Returns:
//   - CameraBuilderOption: a function that sets the zoom speed
func WithZoomSpeed(speed float32) CameraBuilderOption {
	return func(c *orbitCamera) {
		if speed > 0 && speed < 1 {
			c.zoomSpeed = speed
		}
	}
}
