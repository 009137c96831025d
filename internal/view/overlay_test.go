package view

import (
	"image"
	"testing"

	"github.com/Yeicor/flowercard/internal"
)

func TestOverlayToggle(t *testing.T) {
	var o Overlay
	if o.Close() {
		t.Fatal("closing a hidden overlay must report no change")
	}
	if !o.Open() || !o.Visible() {
		t.Fatal("expected open to show the overlay")
	}
	if o.Open() {
		t.Fatal("opening a visible overlay must report no change")
	}
	if !o.Close() || o.Visible() {
		t.Fatal("expected close to hide the overlay")
	}
}

func TestHitTestPaths(t *testing.T) {
	l := NewLayout(800, 600)
	tests := []struct {
		name  string
		p     image.Point
		state internal.ViewState
		want  []Target
	}{
		{"intro anywhere", image.Pt(400, 300), internal.ViewIntro, []Target{TargetIntro}},
		{"scene empty", image.Pt(400, 300), internal.ViewScene, []Target{TargetScene}},
		{"scene icon", center(l.LetterIcon), internal.ViewScene, []Target{TargetLetterIcon, TargetScene}},
		{"scene back", center(l.SceneBack), internal.ViewScene, []Target{TargetBackButton, TargetScene}},
		{"letter backdrop", image.Pt(5, 5), internal.ViewSceneWithLetter, []Target{TargetBackdrop}},
		{"letter panel", center(l.Panel), internal.ViewSceneWithLetter, []Target{TargetPanel, TargetBackdrop}},
		{"letter close", center(l.CloseButton), internal.ViewSceneWithLetter, []Target{TargetCloseButton, TargetPanel, TargetBackdrop}},
		{"letter back", center(l.PanelBack), internal.ViewSceneWithLetter, []Target{TargetBackButton, TargetPanel, TargetBackdrop}},
		{"icon hidden by letter", center(l.LetterIcon), internal.ViewSceneWithLetter, []Target{TargetBackdrop}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.HitTest(tt.p, tt.state, true)
			if len(got) != len(tt.want) {
				t.Fatalf("HitTest(%v) = %v, want %v", tt.p, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("HitTest(%v) = %v, want %v", tt.p, got, tt.want)
				}
			}
		})
	}
}

func TestLayoutInsideScreen(t *testing.T) {
	for _, size := range []image.Point{{800, 600}, {320, 240}, {1920, 1080}, {100, 100}} {
		l := NewLayout(size.X, size.Y)
		for name, r := range map[string]image.Rectangle{
			"icon": l.LetterIcon, "back": l.SceneBack, "panel": l.Panel,
		} {
			if !r.In(l.Screen) {
				t.Errorf("%v: %s %v outside the screen", size, name, r)
			}
		}
		if !l.CloseButton.In(l.Panel) || !l.PanelBack.In(l.Panel) {
			t.Errorf("%v: panel buttons must be inside the panel", size)
		}
	}
}
