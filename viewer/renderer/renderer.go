// Package renderer is the WebGPU rendering layer for the panorama viewer:
// device and surface setup, the textured sphere pipeline, panorama texture
// upload, the per-frame draw, and offscreen targets for video export.
package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/cuixing158/panoview/viewer/media"
)

// ErrNoPanorama indicates a draw was requested before any frame was
// uploaded to the sphere texture.
var ErrNoPanorama = errors.New("renderer: no panorama frame has been uploaded")

// Renderer draws the panorama sphere with a given camera each frame.
type Renderer interface {
	// Configure (re)configures the swapchain and depth buffer for a new
	// drawable size. Must be called on resize.
	//
	// Parameters:
	//   - width: drawable width in pixels
	//   - height: drawable height in pixels
	Configure(width, height int)

	// UploadFrame uploads an RGBA frame to the sphere texture, recreating
	// the texture when the frame geometry changes.
	//
	// Parameters:
	//   - frame: the decoded RGBA frame
	//
	// Returns:
	//   - error: error if texture creation fails
	UploadFrame(frame *media.Frame) error

	// RenderFrame draws the sphere with the given camera and presents the
	// result.
	//
	// Parameters:
	//   - proj: projection matrix
	//   - viewMat: view matrix
	//
	// Returns:
	//   - error: ErrNoPanorama before the first upload, or a surface error
	RenderFrame(proj, viewMat mgl32.Mat4) error

	// NewOffscreenTarget creates an export render target sharing this
	// renderer's device, sphere mesh and panorama texture. The target is
	// inert until its Allocate is called.
	//
	// Returns:
	//   - *OffscreenTarget: the offscreen target
	NewOffscreenTarget() *OffscreenTarget

	// Release frees the GPU resources held by the renderer.
	Release()
}

// sphereRendererImpl is the implementation of the Renderer interface.
type sphereRendererImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat    *wgpu.TextureFormat
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView
	passDescriptor   *wgpu.RenderPassDescriptor
	presentMode      wgpu.PresentMode

	shaderModule    *wgpu.ShaderModule
	bindGroupLayout *wgpu.BindGroupLayout
	pipeline        *wgpu.RenderPipeline
	sampler         *wgpu.Sampler
	uniformBuffer   *wgpu.Buffer

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int

	texture     *wgpu.Texture
	textureView *wgpu.TextureView
	bindGroup   *wgpu.BindGroup
	texWidth    int
	texHeight   int

	slices, stacks int
	width, height  int
}

var _ Renderer = &sphereRendererImpl{}

// uniformBufferSize holds two column-major 4x4 float32 matrices.
const uniformBufferSize = 2 * 16 * 4

// NewRenderer creates a Renderer on the given surface. The sphere mesh,
// shader module, pipeline and sampler are created up front; the panorama
// texture is created on first UploadFrame.
//
// Parameters:
//   - surfaceDescriptor: platform surface descriptor from the window layer
//   - width: initial drawable width in pixels
//   - height: initial drawable height in pixels
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: error if device or pipeline setup fails
func NewRenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...RendererOption) (Renderer, error) {
	r := &sphereRendererImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		slices:      50,
		stacks:      50,
	}
	for _, opt := range options {
		opt(r)
	}

	r.surface = r.instance.CreateSurface(surfaceDescriptor)

	adapter, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: r.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: no suitable adapter: %w", err)
	}
	r.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Panorama Device",
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: device request failed: %w", err)
	}
	r.device = device
	r.queue = device.GetQueue()

	r.Configure(width, height)

	if err := r.initStaticResources(); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *sphereRendererImpl) Configure(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	r.width = width
	r.height = height

	capabilities := r.surface.GetCapabilities(r.adapter)
	r.surfaceFormat = &capabilities.Formats[0]

	r.surface.Configure(r.adapter, r.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *r.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: r.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if r.depthTextureView != nil {
		r.depthTextureView.Release()
	}
	if r.depthTexture != nil {
		r.depthTexture.Release()
	}

	depthTexture, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	r.depthTexture = depthTexture
	r.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	r.passDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       nil, // set per-frame to the swapchain view
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

// initStaticResources creates the per-renderer resources that survive
// resizes: sphere buffers, shader module, bind group layout, sampler,
// uniform buffer and the swapchain pipeline.
func (r *sphereRendererImpl) initStaticResources() error {
	vertices, indices := buildSphere(r.slices, r.stacks, 1)

	vertexBuffer, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Sphere Vertex Buffer",
		Size:  uint64(len(vertices) * 4),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("renderer: vertex buffer: %w", err)
	}
	r.queue.WriteBuffer(vertexBuffer, 0, floatBytes(vertices))
	r.vertexBuffer = vertexBuffer

	indexBuffer, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Sphere Index Buffer",
		Size:  uint64(len(indices) * 4),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("renderer: index buffer: %w", err)
	}
	r.queue.WriteBuffer(indexBuffer, 0, uint32Bytes(indices))
	r.indexBuffer = indexBuffer
	r.indexCount = len(indices)

	shaderModule, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Sphere Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: sphereShaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: shader module: %w", err)
	}
	r.shaderModule = shaderModule

	bindGroupLayout, err := r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Sphere Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uniformBufferSize,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("renderer: bind group layout: %w", err)
	}
	r.bindGroupLayout = bindGroupLayout

	// The panorama wraps horizontally; clamping vertically avoids bleeding
	// between the poles.
	sampler, err := r.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Panorama Sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("renderer: sampler: %w", err)
	}
	r.sampler = sampler

	uniformBuffer, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera Uniform Buffer",
		Size:  uniformBufferSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("renderer: uniform buffer: %w", err)
	}
	r.uniformBuffer = uniformBuffer

	pipeline, err := r.createPipeline(*r.surfaceFormat)
	if err != nil {
		return err
	}
	r.pipeline = pipeline
	return nil
}

// createPipeline builds the sphere render pipeline for a color target
// format. The swapchain pipeline and the offscreen export pipelines share
// everything but the target format.
func (r *sphereRendererImpl) createPipeline(format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	pipelineLayout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Sphere Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.bindGroupLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: pipeline layout: %w", err)
	}

	pipeline, err := r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Sphere Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     r.shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: vertexStride,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     r.shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		// The camera sits inside (or on) the sphere, so both winding
		// orders are visible across the view modes; draw both faces.
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: render pipeline: %w", err)
	}
	return pipeline, nil
}

func (r *sphereRendererImpl) UploadFrame(frame *media.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.texture == nil || r.texWidth != frame.Width || r.texHeight != frame.Height {
		if err := r.recreateTexture(frame.Width, frame.Height); err != nil {
			return err
		}
	}

	r.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  r.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		frame.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(frame.Width * 4),
			RowsPerImage: uint32(frame.Height),
		},
		&wgpu.Extent3D{
			Width:              uint32(frame.Width),
			Height:             uint32(frame.Height),
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

// recreateTexture replaces the panorama texture and its bind group for a
// new frame geometry. Caller holds the lock.
func (r *sphereRendererImpl) recreateTexture(width, height int) error {
	if r.bindGroup != nil {
		r.bindGroup.Release()
		r.bindGroup = nil
	}
	if r.textureView != nil {
		r.textureView.Release()
		r.textureView = nil
	}
	if r.texture != nil {
		r.texture.Release()
		r.texture = nil
	}

	texture, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "Panorama Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("renderer: panorama texture: %w", err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return fmt.Errorf("renderer: panorama texture view: %w", err)
	}

	bindGroup, err := r.createBindGroup(r.uniformBuffer, view)
	if err != nil {
		view.Release()
		texture.Release()
		return err
	}

	r.texture = texture
	r.textureView = view
	r.bindGroup = bindGroup
	r.texWidth = width
	r.texHeight = height
	return nil
}

// createBindGroup binds a camera uniform buffer with the panorama texture
// and sampler.
func (r *sphereRendererImpl) createBindGroup(uniforms *wgpu.Buffer, textureView *wgpu.TextureView) (*wgpu.BindGroup, error) {
	bindGroup, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Sphere Bind Group",
		Layout: r.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: uniforms, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: textureView},
			{Binding: 2, Sampler: r.sampler},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: bind group: %w", err)
	}
	return bindGroup, nil
}

func (r *sphereRendererImpl) RenderFrame(proj, viewMat mgl32.Mat4) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bindGroup == nil {
		return ErrNoPanorama
	}

	r.queue.WriteBuffer(r.uniformBuffer, 0, cameraBytes(proj, viewMat))

	surfaceTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("renderer: acquire swapchain texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("renderer: swapchain view: %w", err)
	}

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("renderer: command encoder: %w", err)
	}

	r.passDescriptor.ColorAttachments[0].View = view
	pass := encoder.BeginRenderPass(r.passDescriptor)
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, r.bindGroup, nil)
	pass.SetVertexBuffer(0, r.vertexBuffer, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(r.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(r.indexCount), 1, 0, 0, 0)
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("renderer: encode frame: %w", err)
	}

	r.queue.Submit(commandBuffer)
	r.surface.Present()

	commandBuffer.Release()
	encoder.Release()
	view.Release()
	surfaceTexture.Release()
	return nil
}

func (r *sphereRendererImpl) NewOffscreenTarget() *OffscreenTarget {
	return &OffscreenTarget{
		mu: &sync.Mutex{},
		r:  r,
	}
}

func (r *sphereRendererImpl) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bindGroup != nil {
		r.bindGroup.Release()
	}
	if r.textureView != nil {
		r.textureView.Release()
	}
	if r.texture != nil {
		r.texture.Release()
	}
	if r.uniformBuffer != nil {
		r.uniformBuffer.Release()
	}
	if r.sampler != nil {
		r.sampler.Release()
	}
	if r.pipeline != nil {
		r.pipeline.Release()
	}
	if r.bindGroupLayout != nil {
		r.bindGroupLayout.Release()
	}
	if r.shaderModule != nil {
		r.shaderModule.Release()
	}
	if r.vertexBuffer != nil {
		r.vertexBuffer.Release()
	}
	if r.indexBuffer != nil {
		r.indexBuffer.Release()
	}
	if r.depthTextureView != nil {
		r.depthTextureView.Release()
	}
	if r.depthTexture != nil {
		r.depthTexture.Release()
	}
	if r.device != nil {
		r.device.Release()
	}
	if r.instance != nil {
		r.instance.Release()
	}
}

// cameraBytes serializes the projection and view matrices into the 128-byte
// little-endian layout of the Camera uniform block.
func cameraBytes(proj, viewMat mgl32.Mat4) []byte {
	buf := make([]byte, uniformBufferSize)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(proj[i]))
	}
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[64+i*4:64+(i+1)*4], math.Float32bits(viewMat[i]))
	}
	return buf
}
