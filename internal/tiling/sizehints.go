package tiling

// SizeHints holds the ICCCM WM_NORMAL_HINTS constraints of a client after
// the base/min fallbacks have been resolved. Zero means unset.
type SizeHints struct {
	BaseWidth  int
	BaseHeight int
	IncWidth   int
	IncHeight  int
	MaxWidth   int
	MaxHeight  int
	MinWidth   int
	MinHeight  int
	// MinAspect is a height/width ratio, MaxAspect a width/height ratio.
	MinAspect float64
	MaxAspect float64
}

// Fixed reports whether the hints pin the client to a single size.
func (h SizeHints) Fixed() bool {
	return h.MaxWidth > 0 && h.MaxHeight > 0 &&
		h.MaxWidth == h.MinWidth && h.MaxHeight == h.MinHeight
}

// Constrain adjusts a client area size to the hints: aspect ratio first,
// then increments, then the min and max bounds. When the base size equals
// the minimum the base is only subtracted after the aspect correction, as
// ICCCM 4.1.2.3 prescribes.
func (h SizeHints) Constrain(w, ht int) (int, int) {
	baseIsMin := h.BaseWidth == h.MinWidth && h.BaseHeight == h.MinHeight
	if !baseIsMin {
		w -= h.BaseWidth
		ht -= h.BaseHeight
	}

	if h.MinAspect > 0 && h.MaxAspect > 0 && w > 0 && ht > 0 {
		if h.MaxAspect < float64(w)/float64(ht) {
			w = int(float64(ht)*h.MaxAspect + 0.5)
		} else if h.MinAspect < float64(ht)/float64(w) {
			ht = int(float64(w)*h.MinAspect + 0.5)
		}
	}

	if baseIsMin {
		w -= h.BaseWidth
		ht -= h.BaseHeight
	}

	if h.IncWidth > 0 {
		w -= w % h.IncWidth
	}
	if h.IncHeight > 0 {
		ht -= ht % h.IncHeight
	}

	w = max(w+h.BaseWidth, h.MinWidth)
	ht = max(ht+h.BaseHeight, h.MinHeight)
	if h.MaxWidth > 0 {
		w = min(w, h.MaxWidth)
	}
	if h.MaxHeight > 0 {
		ht = min(ht, h.MaxHeight)
	}
	return w, ht
}
