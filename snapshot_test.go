package reel

import "testing"

func TestSanitizeLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "frame"},
		{"   ", "frame"},
		{"intro", "intro"},
		{"scene 1/take 2", "scene_1_take_2"},
		{"v1.2-final", "v1.2-final"},
		{"ünïcode", "_n_code"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnpremultiply(t *testing.T) {
	pix := []byte{
		100, 50, 0, 200, // half-ish alpha
		10, 20, 30, 255, // opaque
		0, 0, 0, 0, // transparent
		200, 0, 0, 100, // clamps
	}
	img := unpremultiply(pix, 2, 2)
	want := []byte{
		127, 63, 0, 200,
		10, 20, 30, 255,
		0, 0, 0, 0,
		255, 0, 0, 100,
	}
	for i := range want {
		if img.Pix[i] != want[i] {
			t.Fatalf("Pix = %v, want %v", img.Pix, want)
		}
	}
	if pix[0] != 100 {
		t.Error("input pixels must not be modified")
	}
}

func TestSnapshotQueuesAndForcesFrame(t *testing.T) {
	p, _ := newTestPlayer(nil, 0)
	p.dueFrame()
	p.Snapshot("x")
	if len(p.snapshots) != 1 {
		t.Fatalf("queued = %d, want 1", len(p.snapshots))
	}
	if !p.dueFrame() {
		t.Error("a queued snapshot should force the next frame")
	}
}
