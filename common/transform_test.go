package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVecNear(t *testing.T, want, have mgl32.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], have[:], 1e-4, msgAndArgs...)
}

func TestTransformCombineTranslations(t *testing.T) {
	a := IdentityTransform()
	a.Translation = mgl32.Vec3{1, 0, 0}
	b := IdentityTransform()
	b.Translation = mgl32.Vec3{0, 1, 0}
	c := IdentityTransform()
	c.Translation = mgl32.Vec3{0, 0, 1}

	var ab, abc Transform
	ab.Combine(&a, &b)
	abc.Combine(&ab, &c)

	assertVecNear(t, mgl32.Vec3{1, 1, 1}, abc.Translation)
}

func TestTransformCombineMatchesMatrixProduct(t *testing.T) {
	parent := Transform{
		Translation: mgl32.Vec3{3, -2, 5},
		Rotation:    mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 1, 0}),
		Scale:       mgl32.Vec3{2, 2, 2},
	}
	local := Transform{
		Translation: mgl32.Vec3{1, 4, -1},
		Rotation:    mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{1, 0, 0}),
		Scale:       mgl32.Vec3{0.5, 0.5, 0.5},
	}

	var world Transform
	world.Combine(&parent, &local)

	want := parent.Matrix().Mul4(local.Matrix())
	have := world.Matrix()
	assert.InDeltaSlice(t, want[:], have[:], 1e-4, "have %v\nwant %v", have, want)

	p := mgl32.Vec3{0.25, -1, 2}
	assertVecNear(t, parent.Apply(local.Apply(p)), world.Apply(p))
}

func TestTransformInverse(t *testing.T) {
	tr := Transform{
		Translation: mgl32.Vec3{1, 2, 3},
		Rotation:    mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1}),
		Scale:       mgl32.Vec3{2, 2, 2},
	}
	inv := tr.Inverse()
	p := mgl32.Vec3{-4, 0.5, 7}
	assertVecNear(t, p, inv.Apply(tr.Apply(p)))
}

func TestPlaneWhichSide(t *testing.T) {
	p := NewPlaneFromPoint(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{0, 0, 1})
	assert.Equal(t, SidePositive, p.WhichSide(mgl32.Vec3{0, 0, 3}))
	assert.Equal(t, SideNegative, p.WhichSide(mgl32.Vec3{5, 5, 0}))
	assert.Equal(t, SideNone, p.WhichSide(mgl32.Vec3{9, -3, 1}))
	assert.InDelta(t, 2, p.PseudoDistance(mgl32.Vec3{0, 0, 3}), 1e-6)
}

func TestExtractFrustumFromMatrix(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	f := ExtractFrustumFromMatrix(proj.Mul4(view))

	inside := mgl32.Vec3{0, 0, -10}
	for i := range f.Planes {
		assert.Equal(t, SidePositive, f.Planes[i].WhichSide(inside), "plane %d", i)
		assert.InDelta(t, 1, f.Planes[i].Normal.Len(), 1e-5)
	}
	assert.Equal(t, SideNegative, f.Planes[FrustumFar].WhichSide(mgl32.Vec3{0, 0, -150}))
	assert.Equal(t, SideNegative, f.Planes[FrustumNear].WhichSide(mgl32.Vec3{0, 0, -0.5}))
	assert.InDelta(t, 1, f.Planes[FrustumNear].PseudoDistance(mgl32.Vec3{0, 0, -2}), 1e-4)
}

func TestCoalesceAndClamp(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
	assert.Equal(t, float32(1), Clamp(float32(2), 0, 1))
	assert.Equal(t, -1, Clamp(-5, -1, 1))
}
