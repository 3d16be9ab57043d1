package chart

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"bar", Spec{Kind: Bar, XLabel: "x", YLabel: "y", Y: []float64{3, 1, 2}}},
		{"bar with gaps", Spec{Kind: Bar, XLabel: "row", YLabel: "y", X: []float64{0, 2, 3, 7}, Y: []float64{3, 1, 2, 5}}},
		{"line", Spec{Kind: Line, XLabel: "x", YLabel: "y", X: []float64{1, 2, 3}, Y: []float64{3, 1, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Render(tt.spec)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(b))
			if err != nil {
				t.Fatalf("decode png: %v", err)
			}
			if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
				t.Fatalf("empty image %v", img.Bounds())
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := Render(Spec{Kind: Bar}); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, err := Render(Spec{Kind: "pie", Y: []float64{1}}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := Render(Spec{Kind: Line, X: []float64{1}, Y: []float64{1, 2}}); err == nil {
		t.Fatal("expected mismatched lengths to fail")
	}
	if _, err := Render(Spec{Kind: Bar, X: []float64{0}, Y: []float64{1, 2}}); err == nil {
		t.Fatal("expected mismatched bar positions to fail")
	}
}

func TestBarRuns(t *testing.T) {
	runs := barRuns([]float64{0, 1, 3, 4, 5, 9}, []float64{10, 11, 13, 14, 15, 19})
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %+v", runs)
	}
	want := []struct {
		start float64
		n     int
	}{{0, 2}, {3, 3}, {9, 1}}
	for i, w := range want {
		if runs[i].start != w.start || len(runs[i].values) != w.n {
			t.Fatalf("run %d: expected start %v with %d values, got %+v", i, w.start, w.n, runs[i])
		}
	}
	if runs[1].values[0] != 13 {
		t.Fatalf("unexpected run values %v", runs[1].values)
	}
}
