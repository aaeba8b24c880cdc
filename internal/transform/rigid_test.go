package transform

import (
	"encoding/json"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const eps = 1e-9

func approxVec(t *testing.T, got, want r3.Vec) {
	t.Helper()
	if math.Abs(got.X-want.X) > eps || math.Abs(got.Y-want.Y) > eps || math.Abs(got.Z-want.Z) > eps {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestIdentityApply(t *testing.T) {
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	approxVec(t, Identity().Apply(p), p)
}

func TestFromYawApply(t *testing.T) {
	// 90 degrees about Z maps +X to +Y.
	tr := FromYaw(math.Pi/2, r3.Vec{X: 10})
	got := tr.Apply(r3.Vec{X: 1})
	approxVec(t, got, r3.Vec{X: 10, Y: 1})
}

func TestYawRoundTrip(t *testing.T) {
	for _, yaw := range []float64{0, 0.1, -0.5, math.Pi / 2, -math.Pi / 2, 3} {
		tr := FromYaw(yaw, r3.Vec{})
		if got := tr.Yaw(); math.Abs(got-yaw) > eps {
			t.Errorf("yaw %v: got %v", yaw, got)
		}
	}
}

func TestMulComposes(t *testing.T) {
	a := FromYaw(0.3, r3.Vec{X: 1, Y: -2})
	b := FromYaw(-1.1, r3.Vec{X: 0.5, Z: 2})
	p := r3.Vec{X: 4, Y: 5, Z: 6}
	approxVec(t, a.Mul(b).Apply(p), a.Apply(b.Apply(p)))
}

func TestJSONRoundTrip(t *testing.T) {
	in := FromYaw(0.75, r3.Vec{X: 1.5, Y: -0.25, Z: 3})
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Rigid3
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	approxVec(t, out.Translation, in.Translation)
	if math.Abs(out.Yaw()-in.Yaw()) > eps {
		t.Fatalf("yaw mismatch: got %v want %v", out.Yaw(), in.Yaw())
	}
}

func TestUnmarshalZeroOrientation(t *testing.T) {
	var tr Rigid3
	if err := json.Unmarshal([]byte(`{"position":{"x":1,"y":2,"z":0},"orientation":{"x":0,"y":0,"z":0,"w":0}}`), &tr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// Defaults to identity rotation rather than a degenerate quaternion.
	approxVec(t, tr.Apply(r3.Vec{X: 1}), r3.Vec{X: 2, Y: 2})
}
