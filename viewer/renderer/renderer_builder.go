package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererOption is a functional option for configuring a Renderer.
type RendererOption func(*sphereRendererImpl)

// WithVSync selects the surface present mode. VSync (the default) paces
// presentation to the display; disabling it presents immediately.
//
// Parameters:
//   - enabled: true for Fifo presentation, false for Immediate
//
// Returns:
//   - RendererOption: functional option to set the present mode
func WithVSync(enabled bool) RendererOption {
	return func(r *sphereRendererImpl) {
		if enabled {
			r.presentMode = wgpu.PresentModeFifo
		} else {
			r.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithSphereDetail sets the sphere tessellation density.
//
// Parameters:
//   - slices: longitudinal subdivisions
//   - stacks: latitudinal subdivisions
//
// Returns:
//   - RendererOption: functional option to set the tessellation
func WithSphereDetail(slices, stacks int) RendererOption {
	return func(r *sphereRendererImpl) {
		if slices >= 3 && stacks >= 2 {
			r.slices = slices
			r.stacks = stacks
		}
	}
}
