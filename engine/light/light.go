package light

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/bounding"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// It reaches every fragment, so it has no bound and is never culled.
	LightTypeDirectional LightType = iota

	// LightTypePoint emits in all directions from a position up to Range.
	LightTypePoint

	// LightTypeSpot emits in a cone from a position along a direction up to Range.
	LightTypeSpot
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType    LightType
	position     mgl32.Vec3
	direction    mgl32.Vec3
	color        mgl32.Vec3
	intensity    float32
	lightRange   float32
	innerCone    float32 // stored as cos(angle in radians)
	outerCone    float32 // stored as cos(angle in radians)
	enabled      atomic.Bool
	castsShadows bool
}

// Light defines a light source attached to the scene through a scene.LightBatch.
//
// Position and Direction are in the space of the node the LightBatch is attached to;
// the batch places the light's influence bound in world space per frame slot.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional, point, or spot)
	Type() LightType

	// Position returns the light position. Meaningless for directional lights.
	//
	// Returns:
	//   - mgl32.Vec3: position
	Position() mgl32.Vec3

	// Direction returns the normalized light direction (directional lights and spot axes).
	//
	// Returns:
	//   - mgl32.Vec3: direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - mgl32.Vec3: color
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier.
	Intensity() float32

	// Range returns the maximum attenuation distance for point and spot lights.
	Range() float32

	// InnerCone returns the cosine of the inner cone half-angle for spot lights.
	InnerCone() float32

	// OuterCone returns the cosine of the outer cone half-angle for spot lights.
	OuterCone() float32

	// Enabled reports whether the light contributes to rendering. Safe for concurrent use.
	Enabled() bool

	// CastsShadows reports whether the light is eligible for the shadow pass.
	CastsShadows() bool

	// Bound returns the model-space volume the light can affect, or nil when it is unbounded
	// (directional). A nil bound is never culled.
	//
	// Returns:
	//   - bounding.Volume: the influence sphere, or nil
	Bound() bounding.Volume

	// SetPosition sets the light position.
	SetPosition(p mgl32.Vec3)

	// SetDirection sets the light direction. The vector is normalized.
	SetDirection(d mgl32.Vec3)

	// SetColor sets the RGB color.
	SetColor(c mgl32.Vec3)

	// SetIntensity sets the scalar intensity multiplier.
	SetIntensity(intensity float32)

	// SetRange sets the maximum attenuation distance.
	SetRange(lightRange float32)

	// SetSpotCone sets the inner and outer cone half-angles in degrees.
	SetSpotCone(innerDeg, outerDeg float32)

	// SetEnabled enables or disables the light. Safe for concurrent use.
	SetEnabled(enabled bool)

	// SetCastsShadows sets whether the light is eligible for the shadow pass.
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create (directional, point, or spot)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:  lightType,
		direction:  mgl32.Vec3{0, -1, 0},
		color:      mgl32.Vec3{1, 1, 1},
		intensity:  1.0,
		lightRange: 10.0,
		innerCone:  cosDeg(25),
		outerCone:  cosDeg(35),
	}
	l.enabled.Store(true)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType         { return l.lightType }
func (l *lightImpl) Position() mgl32.Vec3    { return l.position }
func (l *lightImpl) Direction() mgl32.Vec3   { return l.direction }
func (l *lightImpl) Color() mgl32.Vec3       { return l.color }
func (l *lightImpl) Intensity() float32      { return l.intensity }
func (l *lightImpl) Range() float32          { return l.lightRange }
func (l *lightImpl) InnerCone() float32      { return l.innerCone }
func (l *lightImpl) OuterCone() float32      { return l.outerCone }
func (l *lightImpl) Enabled() bool           { return l.enabled.Load() }
func (l *lightImpl) CastsShadows() bool      { return l.castsShadows }
func (l *lightImpl) SetPosition(p mgl32.Vec3) { l.position = p }
func (l *lightImpl) SetColor(c mgl32.Vec3)    { l.color = c }
func (l *lightImpl) SetIntensity(i float32)   { l.intensity = i }
func (l *lightImpl) SetRange(r float32)       { l.lightRange = r }
func (l *lightImpl) SetEnabled(enabled bool)  { l.enabled.Store(enabled) }
func (l *lightImpl) SetCastsShadows(c bool)   { l.castsShadows = c }

func (l *lightImpl) Bound() bounding.Volume {
	if l.lightType == LightTypeDirectional {
		return nil
	}
	return bounding.NewSphere(l.position, l.lightRange)
}

func (l *lightImpl) SetDirection(d mgl32.Vec3) {
	l.direction = normalize(d)
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	l.innerCone = cosDeg(innerDeg)
	l.outerCone = cosDeg(outerDeg)
}

func normalize(d mgl32.Vec3) mgl32.Vec3 {
	if d.Len() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

func cosDeg(deg float32) float32 {
	return math32.Cos(mgl32.DegToRad(deg))
}
