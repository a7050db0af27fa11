package pdf

import "testing"

func TestResolveRect(t *testing.T) {
	tests := []struct {
		name       string
		cfg        FieldConfig
		pageWidth  float64
		pageHeight float64
		want       Rect
	}{
		{
			name:       "non-negative offsets are absolute regardless of page size",
			cfg:        FieldConfig{Name: "f", XOffset: 40, YOffset: 50, Width: 100, Height: 20},
			pageWidth:  612,
			pageHeight: 792,
			want:       Rect{LLX: 40, LLY: 50, URX: 140, URY: 70},
		},
		{
			name:       "non-negative offsets on a larger page",
			cfg:        FieldConfig{Name: "f", XOffset: 40, YOffset: 50, Width: 100, Height: 20},
			pageWidth:  1000,
			pageHeight: 2000,
			want:       Rect{LLX: 40, LLY: 50, URX: 140, URY: 70},
		},
		{
			name:       "negative x offset measured from the right edge",
			cfg:        FieldConfig{Name: "f", XOffset: -27, YOffset: 16, Width: 90, Height: 23},
			pageWidth:  612,
			pageHeight: 792,
			want:       Rect{LLX: 585, LLY: 16, URX: 675, URY: 39},
		},
		{
			name:       "negative y offset measured from the top edge",
			cfg:        FieldConfig{Name: "f", XOffset: 10, YOffset: -30, Width: 50, Height: 20},
			pageWidth:  612,
			pageHeight: 792,
			want:       Rect{LLX: 10, LLY: 762, URX: 60, URY: 782},
		},
		{
			name:       "offset larger than the page is not clamped",
			cfg:        FieldConfig{Name: "f", XOffset: -700, YOffset: 16, Width: 90, Height: 23},
			pageWidth:  612,
			pageHeight: 792,
			want:       Rect{LLX: -88, LLY: 16, URX: 2, URY: 39},
		},
		{
			name:       "stock placement on a letter page",
			cfg:        DefaultFieldConfig(),
			pageWidth:  612,
			pageHeight: 792,
			want:       Rect{LLX: 585, LLY: 16, URX: 675, URY: 39},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRect(tt.cfg, tt.pageWidth, tt.pageHeight)
			if got != tt.want {
				t.Errorf("ResolveRect() = %+v, want %+v", got, tt.want)
			}

			// Same inputs must always produce the same rectangle
			if again := ResolveRect(tt.cfg, tt.pageWidth, tt.pageHeight); again != got {
				t.Errorf("ResolveRect() is not deterministic: %+v vs %+v", got, again)
			}
		})
	}
}

func TestRectDimensions(t *testing.T) {
	r := Rect{LLX: 585, LLY: 16, URX: 675, URY: 39}
	if r.Width() != 90 {
		t.Errorf("expected width 90, got %g", r.Width())
	}
	if r.Height() != 23 {
		t.Errorf("expected height 23, got %g", r.Height())
	}
}
