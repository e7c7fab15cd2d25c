package renderer

import (
	"fmt"
	"image"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// copyBytesPerRowAlignment is the wgpu requirement for texture-to-buffer
// copies: BytesPerRow must be a multiple of 256.
const copyBytesPerRowAlignment = 256

// OffscreenTarget renders sphere frames into a texture and reads the pixels
// back for export. It shares the parent renderer's device, sphere mesh,
// sampler and panorama texture, but owns its color/depth targets, uniform
// buffer, bind group and readback buffer, so export frames can render on a
// worker goroutine while the swapchain keeps presenting.
type OffscreenTarget struct {
	mu *sync.Mutex

	r *sphereRendererImpl

	width, height int
	paddedRow     int

	color     *wgpu.Texture
	colorView *wgpu.TextureView
	depth     *wgpu.Texture
	depthView *wgpu.TextureView
	readback  *wgpu.Buffer
	uniforms  *wgpu.Buffer
	bindGroup *wgpu.BindGroup
	pipeline  *wgpu.RenderPipeline
}

// Allocate creates the offscreen color and depth targets, the readback
// buffer and a pipeline targeting the export format. Allocate requires a
// panorama to have been uploaded to the parent renderer.
//
// Parameters:
//   - width: render width in pixels
//   - height: render height in pixels
//
// Returns:
//   - error: error if any GPU resource cannot be created
func (t *OffscreenTarget) Allocate(width, height int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.releaseLocked()

	t.r.mu.Lock()
	textureView := t.r.textureView
	t.r.mu.Unlock()
	if textureView == nil {
		return ErrNoPanorama
	}

	color, err := t.r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Export Color Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("renderer: export color texture: %w", err)
	}
	colorView, err := color.CreateView(nil)
	if err != nil {
		color.Release()
		return fmt.Errorf("renderer: export color view: %w", err)
	}

	depth, err := t.r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Export Depth Texture",
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
		colorView.Release()
		color.Release()
		return fmt.Errorf("renderer: export depth texture: %w", err)
	}
	depthView, err := depth.CreateView(nil)
	if err != nil {
		depth.Release()
		colorView.Release()
		color.Release()
		return fmt.Errorf("renderer: export depth view: %w", err)
	}

	paddedRow := (width*4 + copyBytesPerRowAlignment - 1) / copyBytesPerRowAlignment * copyBytesPerRowAlignment
	readback, err := t.r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Export Readback Buffer",
		Size:  uint64(paddedRow * height),
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		depthView.Release()
		depth.Release()
		colorView.Release()
		color.Release()
		return fmt.Errorf("renderer: export readback buffer: %w", err)
	}

	uniforms, err := t.r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Export Camera Uniform Buffer",
		Size:  uniformBufferSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		readback.Release()
		depthView.Release()
		depth.Release()
		colorView.Release()
		color.Release()
		return fmt.Errorf("renderer: export uniform buffer: %w", err)
	}

	bindGroup, err := t.r.createBindGroup(uniforms, textureView)
	if err != nil {
		uniforms.Release()
		readback.Release()
		depthView.Release()
		depth.Release()
		colorView.Release()
		color.Release()
		return err
	}

	pipeline, err := t.r.createPipeline(wgpu.TextureFormatRGBA8UnormSrgb)
	if err != nil {
		bindGroup.Release()
		uniforms.Release()
		readback.Release()
		depthView.Release()
		depth.Release()
		colorView.Release()
		color.Release()
		return err
	}

	t.width = width
	t.height = height
	t.paddedRow = paddedRow
	t.color = color
	t.colorView = colorView
	t.depth = depth
	t.depthView = depthView
	t.readback = readback
	t.uniforms = uniforms
	t.bindGroup = bindGroup
	t.pipeline = pipeline
	return nil
}

// RenderFrame draws one sphere frame into the offscreen target and reads
// the pixels back into an RGBA image.
//
// Parameters:
//   - proj: projection matrix
//   - viewMat: view matrix
//
// Returns:
//   - *image.RGBA: the rendered frame
//   - error: error if encoding, submission or readback fails
func (t *OffscreenTarget) RenderFrame(proj, viewMat mgl32.Mat4) (*image.RGBA, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.color == nil {
		return nil, fmt.Errorf("renderer: offscreen target is not allocated")
	}

	t.r.queue.WriteBuffer(t.uniforms, 0, cameraBytes(proj, viewMat))

	encoder, err := t.r.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("renderer: export command encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       t.colorView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            t.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	pass.SetPipeline(t.pipeline)
	pass.SetBindGroup(0, t.bindGroup, nil)
	pass.SetVertexBuffer(0, t.r.vertexBuffer, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(t.r.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(t.r.indexCount), 1, 0, 0, 0)
	pass.End()

	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  t.color,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: t.readback,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(t.paddedRow),
				RowsPerImage: uint32(t.height),
			},
		},
		&wgpu.Extent3D{
			Width:              uint32(t.width),
			Height:             uint32(t.height),
			DepthOrArrayLayers: 1,
		},
	)

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return nil, fmt.Errorf("renderer: encode export frame: %w", err)
	}
	t.r.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	size := uint64(t.paddedRow * t.height)
	var mapErr error
	err = t.readback.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("renderer: readback map failed with status %v", status)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: readback map: %w", err)
	}
	t.r.device.Poll(true, nil)
	if mapErr != nil {
		t.readback.Unmap()
		return nil, mapErr
	}

	data := t.readback.GetMappedRange(0, uint(size))
	img := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	rowBytes := t.width * 4
	for y := 0; y < t.height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+rowBytes], data[y*t.paddedRow:y*t.paddedRow+rowBytes])
	}
	t.readback.Unmap()

	return img, nil
}

// Release frees the offscreen GPU resources. The target can be re-used by
// calling Allocate again.
func (t *OffscreenTarget) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.releaseLocked()
}

func (t *OffscreenTarget) releaseLocked() {
	if t.pipeline != nil {
		t.pipeline.Release()
		t.pipeline = nil
	}
	if t.bindGroup != nil {
		t.bindGroup.Release()
		t.bindGroup = nil
	}
	if t.uniforms != nil {
		t.uniforms.Release()
		t.uniforms = nil
	}
	if t.readback != nil {
		t.readback.Release()
		t.readback = nil
	}
	if t.depthView != nil {
		t.depthView.Release()
		t.depthView = nil
	}
	if t.depth != nil {
		t.depth.Release()
		t.depth = nil
	}
	if t.colorView != nil {
		t.colorView.Release()
		t.colorView = nil
	}
	if t.color != nil {
		t.color.Release()
		t.color = nil
	}
}
