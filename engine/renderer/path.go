package renderer

// PassComposer defines the passes a RenderPath renders and their targets.
type PassComposer interface {
	// Setup prepares the pass templates. Called once before the first frame.
	//
	// Returns:
	//   - error: if the path cannot be configured
	Setup() error

	// CreateDefaultPasses returns fresh passes for one frame slot, in draw order.
	//
	// Parameters:
	//   - fs: the frame state the passes will belong to
	//
	// Returns:
	//   - []*RenderPass: per-slot copies of the pass templates
	CreateDefaultPasses(fs *FrameState) []*RenderPass

	// RootFrameBuffer returns the frame buffer presented to the display.
	RootFrameBuffer() *FrameBuffer

	// Passes returns the pass templates in draw order.
	Passes() []*RenderPass
}

// FrameHooks are called by the engine at fixed points of each frame, in this
// order: PreFrame, PreUpdate (update stage), PreCull, PostCull (cull stage),
// PreMaterial, PreRender, PostRender, AfterRender (render stage). Cleanup runs
// once at shutdown after every in-flight frame has finished.
//
// Each hook runs on the goroutine of its stage and must only touch the given
// FrameState and state owned by that stage.
type FrameHooks interface {
	PreFrame(fs *FrameState)
	PreUpdate(fs *FrameState)
	PreCull(fs *FrameState)
	PostCull(fs *FrameState)
	PreMaterial(fs *FrameState)
	PreRender(fs *FrameState)
	PostRender(fs *FrameState)
	AfterRender(fs *FrameState)
	Cleanup()
}

// RenderPath composes passes and receives the frame hooks.
type RenderPath interface {
	PassComposer
	FrameHooks
}

// Hooks is a no-op FrameHooks for embedding in custom render paths.
type Hooks struct{}

var _ FrameHooks = Hooks{}

func (Hooks) PreFrame(*FrameState)    {}
func (Hooks) PreUpdate(*FrameState)   {}
func (Hooks) PreCull(*FrameState)     {}
func (Hooks) PostCull(*FrameState)    {}
func (Hooks) PreMaterial(*FrameState) {}
func (Hooks) PreRender(*FrameState)   {}
func (Hooks) PostRender(*FrameState)  {}
func (Hooks) AfterRender(*FrameState) {}
func (Hooks) Cleanup()                {}

// HookSet is a FrameHooks built from optional functions. A nil field is a
// no-op, so setting one hook never disables the others.
type HookSet struct {
	OnPreFrame    func(fs *FrameState)
	OnPreUpdate   func(fs *FrameState)
	OnPreCull     func(fs *FrameState)
	OnPostCull    func(fs *FrameState)
	OnPreMaterial func(fs *FrameState)
	OnPreRender   func(fs *FrameState)
	OnPostRender  func(fs *FrameState)
	OnAfterRender func(fs *FrameState)
	OnCleanup     func()
}

var _ FrameHooks = HookSet{}

func call(fn func(*FrameState), fs *FrameState) {
	if fn != nil {
		fn(fs)
	}
}

func (h HookSet) PreFrame(fs *FrameState)    { call(h.OnPreFrame, fs) }
func (h HookSet) PreUpdate(fs *FrameState)   { call(h.OnPreUpdate, fs) }
func (h HookSet) PreCull(fs *FrameState)     { call(h.OnPreCull, fs) }
func (h HookSet) PostCull(fs *FrameState)    { call(h.OnPostCull, fs) }
func (h HookSet) PreMaterial(fs *FrameState) { call(h.OnPreMaterial, fs) }
func (h HookSet) PreRender(fs *FrameState)   { call(h.OnPreRender, fs) }
func (h HookSet) PostRender(fs *FrameState)  { call(h.OnPostRender, fs) }
func (h HookSet) AfterRender(fs *FrameState) { call(h.OnAfterRender, fs) }

func (h HookSet) Cleanup() {
	if h.OnCleanup != nil {
		h.OnCleanup()
	}
}
