package harness

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// particleShader renders one point sprite per instance, colored by its
// surface normal so the creature's curvature is readable without lighting.
const particleShader = `
struct VertexOut {
	@builtin(position) clip_position: vec4<f32>,
	@location(0) color: vec3<f32>,
};

@vertex
fn vs_main(@location(0) pos: vec3<f32>, @location(1) size: f32, @location(2) normal: vec3<f32>) -> VertexOut {
	var out: VertexOut;
	out.clip_position = vec4<f32>(pos * 0.8, 1.0);
	out.color = normal * 0.5 + vec3<f32>(0.5, 0.5, 0.5);
	return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
	return vec4<f32>(in.color, 1.0);
}
`

// Window is the GLFW surface the demo draws into.
type Window struct {
	win    *glfw.Window
	Width  int
	Height int
	Title  string
}

// ShouldClose reports whether the user asked to close the window.
func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

// PollEvents pumps the GLFW event queue. Call once per frame from Prelude.
func (w *Window) PollEvents() { glfw.PollEvents() }

func newWindow(width, height int, title string) *Window {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		panic(err)
	}
	return &Window{win: win, Width: width, Height: height, Title: title}
}

// GPU owns the wgpu device, surface, and the single instanced point-sprite
// pipeline the demo needs to visualize a particle arena.
type GPU struct {
	surface       *wgpu.Surface
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
	pipeline      *wgpu.RenderPipeline
}

func newGPU(w *Window, instanceStride uint64) *GPU {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(w.win))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "sporeforge device"})
	if err != nil {
		panic(err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(w.Width),
		Height:      uint32(w.Height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "particle shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: particleShader},
	})
	if err != nil {
		panic(err)
	}
	defer shader.Release()

	layout := wgpu.VertexBufferLayout{
		ArrayStride: instanceStride,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{ShaderLocation: 0, Offset: 0, Format: wgpu.VertexFormatFloat32x3},
			{ShaderLocation: 1, Offset: 12, Format: wgpu.VertexFormatFloat32},
			{ShaderLocation: 2, Offset: 16, Format: wgpu.VertexFormatFloat32x3},
		},
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{layout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{Format: surfaceConfig.Format, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: wgpu.PrimitiveState{Topology: wgpu.PrimitiveTopologyPointList},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		panic(err)
	}

	return &GPU{
		surface:       surface,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
		pipeline:      pipeline,
	}
}

// DrawInstances uploads raw instance bytes and submits one frame drawing
// count point sprites.
func (g *GPU) DrawInstances(data []byte, count uint32) error {
	if count == 0 {
		return nil
	}
	vbuf, err := g.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "instance buffer",
		Contents: data,
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return err
	}
	defer vbuf.Release()

	tex, err := g.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := tex.Texture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := g.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0.02, G: 0.02, B: 0.05, A: 1},
		}},
	})
	pass.SetPipeline(g.pipeline)
	pass.SetVertexBuffer(0, vbuf, 0, wgpu.WholeSize)
	pass.Draw(1, count, 0, 0)
	pass.End()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	g.queue.Submit(cmd)
	g.surface.Present()
	return nil
}

// WindowModule installs a Window and its GPU backend as resources. The
// instanceStride argument is the byte size of one render.ParticleInstance.
type WindowModule struct {
	Width, Height  int
	Title          string
	InstanceStride uint64
}

func (m WindowModule) Install(app *App, cmd *Commands) {
	w := newWindow(m.Width, m.Height, m.Title)
	g := newGPU(w, m.InstanceStride)
	cmd.AddResources(w, g)
}
