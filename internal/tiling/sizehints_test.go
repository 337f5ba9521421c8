package tiling

import "testing"

func TestSizeHintsConstrain(t *testing.T) {
	tests := []struct {
		name  string
		hints SizeHints
		w, h  int
		wantW int
		wantH int
	}{
		{
			name:  "no hints",
			w:     640,
			h:     480,
			wantW: 640,
			wantH: 480,
		},
		{
			name:  "terminal increments",
			hints: SizeHints{BaseWidth: 4, BaseHeight: 4, IncWidth: 7, IncHeight: 13},
			w:     700,
			h:     400,
			// (700-4) - (696%7=3) + 4 = 697; (400-4) - (396%13=6) + 4 = 394
			wantW: 697,
			wantH: 394,
		},
		{
			name:  "minimum wins",
			hints: SizeHints{MinWidth: 200, MinHeight: 100},
			w:     50,
			h:     50,
			wantW: 200,
			wantH: 100,
		},
		{
			name:  "maximum caps",
			hints: SizeHints{MaxWidth: 300, MaxHeight: 200},
			w:     1000,
			h:     1000,
			wantW: 300,
			wantH: 200,
		},
		{
			name:  "aspect too wide",
			hints: SizeHints{MinAspect: 0.5, MaxAspect: 1.0},
			w:     400,
			h:     200,
			// width/height = 2 > 1 -> w = 200*1.0
			wantW: 200,
			wantH: 200,
		},
		{
			name:  "aspect too tall",
			hints: SizeHints{MinAspect: 1.0, MaxAspect: 2.0},
			w:     100,
			h:     300,
			// height/width = 3 > 1 -> h = 100*1.0
			wantW: 100,
			wantH: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.hints.Constrain(tt.w, tt.h)
			if w != tt.wantW || h != tt.wantH {
				t.Fatalf("Constrain(%d,%d) = %d,%d; want %d,%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestSizeHintsFixed(t *testing.T) {
	if !(SizeHints{MinWidth: 10, MinHeight: 10, MaxWidth: 10, MaxHeight: 10}).Fixed() {
		t.Fatalf("expected fixed hints")
	}
	if (SizeHints{MinWidth: 10, MinHeight: 10, MaxWidth: 20, MaxHeight: 10}).Fixed() {
		t.Fatalf("expected resizable hints")
	}
	if (SizeHints{}).Fixed() {
		t.Fatalf("empty hints must not be fixed")
	}
}
