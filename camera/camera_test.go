package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720, 900, 760, 0, 0.3)

	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
	if cam.Pitch != 0.3 {
		t.Errorf("expected pitch 0.3, got %f", cam.Pitch)
	}
}

func TestOriginMapsToScreenCenter(t *testing.T) {
	cam := New(1280, 720, 900, 760, 0.7, 0.4)

	sx, sy, scale := cam.WorldToScreen(r3.Vec{})
	if math.Abs(sx-640) > 1e-9 || math.Abs(sy-360) > 1e-9 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
	if math.Abs(scale-760.0/900.0) > 1e-12 {
		t.Errorf("expected scale focal/distance, got %f", scale)
	}
}

func TestDepthSign(t *testing.T) {
	cam := New(1280, 720, 900, 760, 0, 0)

	// Looking along +z from z = -900: a point at world +z is behind the origin.
	behind, sBehind := cam.ToCamera(r3.Vec{Z: 100})
	front, sFront := cam.ToCamera(r3.Vec{Z: -100})
	if behind.Z <= 0 {
		t.Errorf("expected positive depth behind origin, got %f", behind.Z)
	}
	if front.Z >= 0 {
		t.Errorf("expected negative depth in front of origin, got %f", front.Z)
	}
	if sFront <= sBehind {
		t.Errorf("nearer points should scale larger: front=%f behind=%f", sFront, sBehind)
	}
}

func TestYawRotatesDepth(t *testing.T) {
	cam := New(1280, 720, 900, 760, math.Pi/2, 0)

	// Yawing a quarter turn brings world +x to the far side.
	p, _ := cam.ToCamera(r3.Vec{X: 100})
	if math.Abs(p.Z-100) > 1e-9 || math.Abs(p.X) > 1e-9 {
		t.Errorf("expected (0, 0, 100), got %v", p)
	}
}

func TestPitchLooksDown(t *testing.T) {
	cam := New(1280, 720, 900, 760, 0, 0.5)

	// Far side of the disk plane appears above the center when looking down.
	_, sy, _ := cam.WorldToScreen(r3.Vec{Z: 200})
	if sy >= 360 {
		t.Errorf("expected far side above screen center, got y=%f", sy)
	}

	// The camera's own direction has camera-space depth only.
	dir := cam.ViewDir()
	p, _ := cam.ToCamera(dir)
	if math.Abs(p.X) > 1e-9 || math.Abs(p.Y) > 1e-9 || math.Abs(p.Z-1) > 1e-9 {
		t.Errorf("view direction should map to +z, got %v", p)
	}
}

func TestRotationPreservesLength(t *testing.T) {
	cam := New(1280, 720, 900, 760, 1.1, -0.7)
	w := r3.Vec{X: 30, Y: -12, Z: 55}
	p, _ := cam.ToCamera(w)
	if math.Abs(r3.Norm(p)-r3.Norm(w)) > 1e-9 {
		t.Errorf("rotation changed length: %f -> %f", r3.Norm(w), r3.Norm(p))
	}
}

func TestNearPlaneGuard(t *testing.T) {
	cam := New(1280, 720, 900, 760, 0, 0)
	_, scale := cam.ToCamera(r3.Vec{Z: -5000})
	if math.IsInf(scale, 0) || math.IsNaN(scale) || scale <= 0 {
		t.Errorf("expected finite positive scale behind the camera, got %f", scale)
	}
	if scale != 760 {
		t.Errorf("expected scale clamped at near plane, got %f", scale)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 900, 760, 0, 0)
	cam.MinZoom = 0.5

	cam.SetZoom(0.1)
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom clamped to 0.5, got %f", cam.Zoom)
	}

	cam.SetZoom(10.0)
	if cam.Zoom != 4.0 {
		t.Errorf("expected zoom clamped to 4.0, got %f", cam.Zoom)
	}

	cam.SetZoom(1)
	cam.ZoomBy(2)
	_, scale := cam.ToCamera(r3.Vec{})
	if math.Abs(scale-760.0/450.0) > 1e-12 {
		t.Errorf("zoom 2 should halve the distance, scale=%f", scale)
	}
}

func TestOrbitClampsPitch(t *testing.T) {
	cam := New(1280, 720, 900, 760, 0, 0)
	cam.Orbit(0, 10)
	if cam.Pitch >= math.Pi/2 {
		t.Errorf("pitch should stay below the pole, got %f", cam.Pitch)
	}
	cam.Orbit(3*math.Pi, 0)
	if cam.Yaw < -math.Pi || cam.Yaw > math.Pi {
		t.Errorf("yaw should wrap to [-pi, pi], got %f", cam.Yaw)
	}
}

func TestUpdateDrift(t *testing.T) {
	cam := New(1280, 720, 900, 760, 0, 0)
	cam.OrbitSpeed = 0.5
	cam.Update(1)
	if math.Abs(cam.Yaw-0.5) > 1e-12 {
		t.Errorf("expected yaw 0.5 after drift, got %f", cam.Yaw)
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 900, 760, 0.2, 0.3)
	cam.Orbit(1, 0.4)
	cam.SetZoom(3)
	cam.Reset()

	if cam.Yaw != 0.2 || cam.Pitch != 0.3 || cam.Zoom != 1 {
		t.Errorf("reset = yaw %f pitch %f zoom %f", cam.Yaw, cam.Pitch, cam.Zoom)
	}
}
