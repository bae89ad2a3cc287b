// Package wgpubackend implements renderer.DrawBackend on WebGPU. Every method,
// New included, must run on the thread that owns the surface; the engine calls
// them through its renderer.GPUQueue.
package wgpubackend

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/camera"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/light"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrTooManyDraws is returned by Draw once a frame has used every per-draw uniform slot.
var ErrTooManyDraws = errors.New("wgpubackend: per-frame draw limit reached")

type meshBuffers struct {
	vertex  *wgpu.Buffer
	index   *wgpu.Buffer
	count   uint32
	version uint64
}

func (m *meshBuffers) release() {
	if m.vertex != nil {
		m.vertex.Release()
	}
	if m.index != nil {
		m.index.Release()
	}
}

// Backend draws frames onto a WebGPU surface. Geometry buffers are created on
// first use and re-uploaded when the geometry's version changes. Lights drawn
// anywhere in a frame light every pass of that frame. Passes whose target is
// offscreen are skipped.
type Backend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	presentMode   wgpu.PresentMode
	sampleCount   renderer.MSAASampleCount
	fallback      bool
	maxDraws      int
	width, height int

	surfaceFormat wgpu.TextureFormat
	msaaTexture   *wgpu.Texture
	msaaView      *wgpu.TextureView
	depthTexture  *wgpu.Texture
	depthView     *wgpu.TextureView

	opaquePipeline      *wgpu.RenderPipeline
	transparentPipeline *wgpu.RenderPipeline
	frameLayout         *wgpu.BindGroupLayout
	drawLayout          *wgpu.BindGroupLayout
	cameraBuffer        *wgpu.Buffer
	lightsBuffer        *wgpu.Buffer
	drawBuffer          *wgpu.Buffer
	frameGroup          *wgpu.BindGroup
	drawGroup           *wgpu.BindGroup

	meshes map[geometry.Geometry]*meshBuffers

	// per-frame state
	current      frame.Frame
	encoder      *wgpu.CommandEncoder
	pass         *wgpu.RenderPassEncoder
	skipPass     bool
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	cameraData   []byte
	lights       []light.GPULight
	lightsData   []byte
	drawData     []byte
	draws        int
}

var _ renderer.DrawBackend = &Backend{}

// New creates the WebGPU instance, adapter and device for surfaceDesc and
// configures the surface at width x height.
//
// Parameters:
//   - surfaceDesc: platform surface descriptor, e.g. from the window
//   - width: surface width in pixels
//   - height: surface height in pixels
//   - options: functional options to configure the backend
//
// Returns:
//   - *Backend: the ready backend
//   - error: if any GPU object could not be created
func New(surfaceDesc *wgpu.SurfaceDescriptor, width, height int, options ...BackendBuilderOption) (*Backend, error) {
	b := &Backend{
		mu:          &sync.Mutex{},
		presentMode: wgpu.PresentModeFifo,
		sampleCount: renderer.MSAAOff,
		maxDraws:    defaultDraw,
		meshes:      make(map[geometry.Geometry]*meshBuffers),
		cameraData:  make([]byte, 80),
		lightsData:  make([]byte, lightsSize),
	}
	for _, option := range options {
		option(b)
	}
	b.drawData = make([]byte, b.maxDraws*drawStride)

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDesc)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.fallback,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("wgpubackend: request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{Label: "Scene Device"})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("wgpubackend: request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		b.Release()
		return nil, errors.New("wgpubackend: surface reports no formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	if err := b.createPipelines(); err != nil {
		b.Release()
		return nil, err
	}
	if err := b.configure(width, height); err != nil {
		b.Release()
		return nil, err
	}
	common.Logger().Info("wgpu backend ready",
		"width", width, "height", height,
		"msaa", uint32(b.sampleCount), "fallback", b.fallback, "maxDraws", b.maxDraws)
	return b, nil
}

func (b *Backend) createPipelines() error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Scene Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaderSource},
	})
	if err != nil {
		return fmt.Errorf("wgpubackend: shader module: %w", err)
	}
	defer module.Release()

	visibility := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	b.frameLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Frame Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: visibility, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 80}},
			{Binding: 1, Visibility: visibility, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: lightsSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpubackend: frame layout: %w", err)
	}
	b.drawLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Draw Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: visibility, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, HasDynamicOffset: true, MinBindingSize: drawSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpubackend: draw layout: %w", err)
	}

	if b.cameraBuffer, err = b.uniformBuffer("Camera Buffer", 80); err != nil {
		return err
	}
	if b.lightsBuffer, err = b.uniformBuffer("Lights Buffer", lightsSize); err != nil {
		return err
	}
	if b.drawBuffer, err = b.uniformBuffer("Draw Buffer", uint64(len(b.drawData))); err != nil {
		return err
	}

	b.frameGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame Bind Group",
		Layout: b.frameLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.cameraBuffer, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: b.lightsBuffer, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpubackend: frame bind group: %w", err)
	}
	b.drawGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Draw Bind Group",
		Layout:  b.drawLayout,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: b.drawBuffer, Size: drawSize}},
	})
	if err != nil {
		return fmt.Errorf("wgpubackend: draw bind group: %w", err)
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Scene Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.frameLayout, b.drawLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpubackend: pipeline layout: %w", err)
	}
	defer layout.Release()

	if b.opaquePipeline, err = b.renderPipeline(module, layout, false); err != nil {
		return err
	}
	if b.transparentPipeline, err = b.renderPipeline(module, layout, true); err != nil {
		return err
	}
	return nil
}

func (b *Backend) uniformBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpubackend: %s: %w", label, err)
	}
	return buf, nil
}

func (b *Backend) renderPipeline(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout, blend bool) (*wgpu.RenderPipeline, error) {
	target := wgpu.ColorTargetState{Format: b.surfaceFormat, WriteMask: wgpu.ColorWriteMaskAll}
	label := "Opaque Pipeline"
	if blend {
		target.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
		label = "Transparent Pipeline"
	}
	p, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: 12,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes:  []wgpu.VertexAttribute{{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0}},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: !blend,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpubackend: %s: %w", label, err)
	}
	return p, nil
}

// configure (re)configures the surface and the size-dependent attachments.
func (b *Backend) configure(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("wgpubackend: invalid surface size %dx%d", width, height)
	}
	b.releaseAttachments()
	b.width, b.height = width, height

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	var err error
	count := uint32(b.sampleCount)
	if count > 1 {
		b.msaaTexture, b.msaaView, err = b.attachment("MSAA Texture", b.surfaceFormat, count)
		if err != nil {
			return err
		}
	}
	b.depthTexture, b.depthView, err = b.attachment("Depth Texture", wgpu.TextureFormatDepth24Plus, count)
	return err
}

func (b *Backend) attachment(label string, format wgpu.TextureFormat, samples uint32) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(b.width),
			Height:             uint32(b.height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wgpubackend: %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("wgpubackend: %s view: %w", label, err)
	}
	return tex, view, nil
}

func (b *Backend) releaseAttachments() {
	if b.msaaView != nil {
		b.msaaView.Release()
		b.msaaTexture.Release()
		b.msaaView, b.msaaTexture = nil, nil
	}
	if b.depthView != nil {
		b.depthView.Release()
		b.depthTexture.Release()
		b.depthView, b.depthTexture = nil, nil
	}
}

// Resize reconfigures the surface for a new window size. It must not be
// called while a frame is being recorded.
//
// Parameters:
//   - width: new width in pixels
//   - height: new height in pixels
//
// Returns:
//   - error: if the size is invalid or the attachments cannot be recreated
func (b *Backend) Resize(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.encoder != nil {
		return errors.New("wgpubackend: resize during a frame")
	}
	return b.configure(width, height)
}

// Size returns the configured surface size.
func (b *Backend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *Backend) BeginFrame(fr frame.Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("wgpubackend: %s begun before the previous frame ended", fr)
	}
	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("wgpubackend: acquire surface texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("wgpubackend: surface view: %w", err)
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("wgpubackend: command encoder: %w", err)
	}

	b.current = fr
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.encoder = encoder
	b.lights = b.lights[:0]
	b.draws = 0
	return nil
}

func (b *Backend) BeginPass(p *renderer.RenderPass, cam camera.Camera) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder == nil {
		return errors.New("wgpubackend: BeginPass outside a frame")
	}
	b.skipPass = p.Target != nil && p.Target.Offscreen
	if b.skipPass {
		return nil
	}
	if cam != nil {
		u := camera.NewGPUCameraUniform(cam)
		copy(b.cameraData, u.Marshal())
	}

	color := wgpu.RenderPassColorAttachment{
		View:    b.frameView,
		LoadOp:  wgpu.LoadOpLoad,
		StoreOp: wgpu.StoreOpStore,
	}
	if b.msaaView != nil {
		color.View = b.msaaView
		color.ResolveTarget = b.frameView
	}
	if p.Clear.Has(renderer.ClearColor) {
		color.LoadOp = wgpu.LoadOpClear
		c := p.ClearValue
		color.ClearValue = wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
	}
	depth := &wgpu.RenderPassDepthStencilAttachment{
		View:            b.depthView,
		DepthLoadOp:     wgpu.LoadOpLoad,
		DepthStoreOp:    wgpu.StoreOpStore,
		DepthClearValue: 1.0,
	}
	if p.Clear.Has(renderer.ClearDepth) {
		depth.DepthLoadOp = wgpu.LoadOpClear
	}

	b.pass = b.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:                  p.Name,
		ColorAttachments:       []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: depth,
	})
	if p.ID == renderer.PassTransparent {
		b.pass.SetPipeline(b.transparentPipeline)
	} else {
		b.pass.SetPipeline(b.opaquePipeline)
	}
	b.pass.SetBindGroup(0, b.frameGroup, nil)
	return nil
}

func (b *Backend) Draw(dc renderer.DrawCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.skipPass {
		return nil
	}
	if b.pass == nil {
		return errors.New("wgpubackend: Draw outside a pass")
	}
	if dc.Light != nil {
		if len(b.lights) < MaxLights {
			g := light.ToGPULight(dc.Light)
			world := dc.World
			g.Position = world.Apply(dc.Light.Position())
			g.Direction = world.Rotation.Rotate(dc.Light.Direction()).Normalize()
			b.lights = append(b.lights, g)
		}
		return nil
	}
	if dc.Geometry == nil || dc.Geometry.TriangleCount() == 0 {
		return nil
	}
	if b.draws >= b.maxDraws {
		return ErrTooManyDraws
	}

	mesh, err := b.mesh(dc.Geometry)
	if err != nil {
		return err
	}
	offset := b.draws * drawStride
	packDraw(b.drawData[offset:], dc.World.Matrix(), dc.Geometry.Color())
	b.draws++

	b.pass.SetBindGroup(1, b.drawGroup, []uint32{uint32(offset)})
	b.pass.SetVertexBuffer(0, mesh.vertex, 0, wgpu.WholeSize)
	b.pass.SetIndexBuffer(mesh.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.pass.DrawIndexed(mesh.count, 1, 0, 0, 0)
	return nil
}

// mesh returns the GPU buffers for g, uploading them when g is new or changed.
func (b *Backend) mesh(g geometry.Geometry) (*meshBuffers, error) {
	m := b.meshes[g]
	if m != nil && m.version == g.Version() {
		return m, nil
	}
	if m != nil {
		m.release()
	}
	vertices := vertexBytes(g.Positions())
	indices := indexBytes(g.Indices())

	vb, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: g.Name() + " Vertex Buffer",
		Size:  uint64(len(vertices)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpubackend: vertex buffer %q: %w", g.Name(), err)
	}
	ib, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: g.Name() + " Index Buffer",
		Size:  uint64(len(indices)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("wgpubackend: index buffer %q: %w", g.Name(), err)
	}
	b.queue.WriteBuffer(vb, 0, vertices)
	b.queue.WriteBuffer(ib, 0, indices)

	m = &meshBuffers{vertex: vb, index: ib, count: uint32(len(g.Indices())), version: g.Version()}
	b.meshes[g] = m
	return m, nil
}

func (b *Backend) EndPass() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.skipPass {
		b.skipPass = false
		return nil
	}
	if b.pass == nil {
		return nil
	}
	b.pass.End()
	b.pass.Release()
	b.pass = nil
	return nil
}

func (b *Backend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder == nil {
		return nil
	}
	defer b.endFrame()

	packLights(b.lightsData, b.lights)
	b.queue.WriteBuffer(b.cameraBuffer, 0, b.cameraData)
	b.queue.WriteBuffer(b.lightsBuffer, 0, b.lightsData)
	if b.draws > 0 {
		b.queue.WriteBuffer(b.drawBuffer, 0, b.drawData[:b.draws*drawStride])
	}

	commandBuffer, err := b.encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("wgpubackend: finish %s: %w", b.current, err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.surface.Present()
	return nil
}

// endFrame releases the per-frame objects.
func (b *Backend) endFrame() {
	if b.pass != nil {
		b.pass.End()
		b.pass.Release()
		b.pass = nil
	}
	b.encoder.Release()
	b.encoder = nil
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

// Release frees every GPU object. It is safe on a partially built backend.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder != nil {
		b.endFrame()
	}
	for g, m := range b.meshes {
		m.release()
		delete(b.meshes, g)
	}
	b.releaseAttachments()
	if b.drawGroup != nil {
		b.drawGroup.Release()
		b.drawGroup = nil
	}
	if b.frameGroup != nil {
		b.frameGroup.Release()
		b.frameGroup = nil
	}
	for _, buf := range []**wgpu.Buffer{&b.drawBuffer, &b.lightsBuffer, &b.cameraBuffer} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	for _, l := range []**wgpu.BindGroupLayout{&b.drawLayout, &b.frameLayout} {
		if *l != nil {
			(*l).Release()
			*l = nil
		}
	}
	for _, p := range []**wgpu.RenderPipeline{&b.transparentPipeline, &b.opaquePipeline} {
		if *p != nil {
			(*p).Release()
			*p = nil
		}
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
