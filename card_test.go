package card

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Yeicor/flowercard/internal"
	"github.com/Yeicor/flowercard/internal/config"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestNewCardDefaults(t *testing.T) {
	c, err := NewCard(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	snap := c.Snapshot()
	if snap.View != ViewIntro || snap.IntroMode != internal.IntroTimer {
		t.Fatalf("expected timer intro, got %s (%s)", snap.View, snap.IntroMode)
	}
	if snap.MeshReady || snap.LetterVisible || snap.Camera.IsApproachAnimating {
		t.Fatalf("unexpected initial snapshot %+v", snap)
	}
	if snap.LetterTitle != config.Default().Letter.Title {
		t.Fatalf("unexpected letter title %q", snap.LetterTitle)
	}
}

func TestNewCardOptions(t *testing.T) {
	start := v3.Vec{X: 1, Y: 1, Z: 4}
	c, err := NewCard(nil,
		OptIntroTap(),
		OptCamApproach(start, v3.Vec{Z: 2}, 0.1, 0.001),
		OptLetter("Hi", "one", "two"),
		OptBackAction(false),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	snap := c.Snapshot()
	if snap.IntroMode != internal.IntroTap {
		t.Fatalf("expected tap intro, got %s", snap.IntroMode)
	}
	if snap.Camera.Position != start {
		t.Fatalf("expected camera at %v, got %v", start, snap.Camera.Position)
	}
	if snap.LetterTitle != "Hi" || len(snap.LetterLines) != 2 {
		t.Fatalf("unexpected letter %q %q", snap.LetterTitle, snap.LetterLines)
	}
	c.machine.Tap()
	if c.machine.Back() {
		t.Fatal("back must be disabled")
	}
}

func TestNewCardInvalidOptions(t *testing.T) {
	for name, opt := range map[string]Option{
		"res_inv":  OptResInv(0),
		"rate":     OptCamApproach(v3.Vec{Z: 5}, v3.Vec{Z: 1.5}, 1.5, 0.01),
		"polar":    OptOrbit(100, 20, 1, 8, true),
		"distance": OptOrbit(30, 90, 0, 8, true),
		"model":    OptModel(" "),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := NewCard(nil, opt); !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestNewCardCopiesConfig(t *testing.T) {
	cfg := config.Default()
	c, err := NewCard(cfg, OptLetter("Mine"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if cfg.Letter.Title == "Mine" {
		t.Fatal("options leaked into the caller's config")
	}
	cfg.Letter.Lines[0] = "changed"
	if c.cfg.Letter.Lines[0] == "changed" {
		t.Fatal("the card shares the caller's config")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	c, err := NewCard(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	snap := c.Snapshot()
	snap.LetterLines[0] = "changed"
	if c.Snapshot().LetterLines[0] == "changed" {
		t.Fatal("snapshot shares the letter lines")
	}
}

func TestCloseCancelsIntroTimer(t *testing.T) {
	c, err := NewCard(nil, OptIntroDwell(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	c.Close()
	c.machine.Tick(time.Second)
	if got := c.Snapshot().View; got != ViewIntro {
		t.Fatalf("transitioned to %s after close", got)
	}
	c.Close() // Idempotent
}

func TestLetterConfetti(t *testing.T) {
	c, err := NewCard(nil, OptIntroTap())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	c.screenSize.X, c.screenSize.Y = 800, 600
	c.machine.Tap()
	if c.confetti.active() != 0 {
		t.Fatal("confetti before opening the letter")
	}
	c.machine.OpenLetter()
	if c.confetti.active() == 0 {
		t.Fatal("no confetti when opening the letter")
	}
	c.machine.CloseLetter()
	if n := c.confetti.active(); n != 0 {
		t.Fatalf("%d confetti pieces left after closing the letter", n)
	}
}

func TestReloadMesh(t *testing.T) {
	c, err := NewCard(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	c.assets.builtinCells = 16
	c.reloadMesh()
	if !c.Snapshot().MeshReady {
		t.Fatal("mesh not published")
	}
	c.reloadMesh()
	if c.meshVersion != 2 {
		t.Fatalf("expected mesh version 2, got %d", c.meshVersion)
	}
}

func TestReloadMeshKeepsPreviousOnError(t *testing.T) {
	c, err := NewCard(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	c.assets.builtinCells = 16
	c.reloadMesh()
	c.cfg.Model.Path = filepath.Join(t.TempDir(), "missing.stl")
	c.reloadMesh()
	if !c.Snapshot().MeshReady || c.meshVersion != 1 {
		t.Fatalf("failed load replaced the mesh (version %d)", c.meshVersion)
	}
}

func writeLetterConfig(t *testing.T, path, title string) {
	t.Helper()
	data := []byte("letter:\n  title: \"" + title + "\"\n  lines: [\"hello\"]\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReloadLetter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.yaml")
	writeLetterConfig(t, path, "First")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewCard(cfg, OptConfigFile(path))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if got := c.Snapshot().LetterTitle; got != "First" {
		t.Fatalf("unexpected title %q", got)
	}
	writeLetterConfig(t, path, "Second")
	c.reloadLetter()
	if snap := c.Snapshot(); snap.LetterTitle != "Second" || len(snap.LetterLines) != 1 {
		t.Fatalf("letter not reloaded: %q %q", snap.LetterTitle, snap.LetterLines)
	}

	// Broken files are ignored
	if err = os.WriteFile(path, []byte("render: {res_inv: 0}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c.reloadLetter()
	if got := c.Snapshot().LetterTitle; got != "Second" {
		t.Fatalf("invalid config replaced the letter: %q", got)
	}
}

func TestWatchReloadsLetter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.yaml")
	writeLetterConfig(t, path, "First")
	c, err := NewCard(nil, OptConfigFile(path), OptWatch(true))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	stop, err := c.watch()
	if err != nil {
		t.Skip("file watching unavailable:", err)
	}
	defer stop()
	writeLetterConfig(t, path, "Watched")
	deadline := time.Now().Add(5 * time.Second)
	for c.Snapshot().LetterTitle != "Watched" {
		if time.Now().After(deadline) {
			t.Fatal("letter not reloaded after the config file changed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestConfettiLifecycle(t *testing.T) {
	cf := newConfetti(1)
	cf.burst(800, 600, 50)
	if n := cf.active(); n != 50 {
		t.Fatalf("expected 50 pieces, got %d", n)
	}
	cf.update(1.0/60, 600)
	if n := cf.active(); n != 50 {
		t.Fatalf("pieces lost on the first frame: %d left", n)
	}
	for i := 0; i < 60*10; i++ {
		cf.update(1.0/60, 600)
	}
	if n := cf.active(); n != 0 {
		t.Fatalf("%d pieces still falling after 10s", n)
	}
	cf.burst(800, 600, 10)
	cf.clear()
	if n := cf.active(); n != 0 {
		t.Fatalf("%d pieces after clear", n)
	}
}

func TestFrameDuration(t *testing.T) {
	tests := []struct {
		tps  int
		want time.Duration
	}{
		{tps: 60, want: time.Second / 60},
		{tps: 1, want: time.Second},
		{tps: 0, want: time.Second},
		{tps: -1, want: time.Second}, // ebiten.SyncWithFPS
	}
	for _, tt := range tests {
		if got := frameDuration(tt.tps); got != tt.want {
			t.Errorf("frameDuration(%d) = %s, want %s", tt.tps, got, tt.want)
		}
	}
}
