package pdf

// ResolveRect maps a configured offset pair and size to an absolute page
// rectangle. A non-negative offset is the distance from the left/bottom
// edge; a negative offset is measured back from the right/top edge. The
// result is deterministic and never clamped: offsets larger than the page
// produce out-of-bounds rectangles, which is the caller's problem.
func ResolveRect(cfg FieldConfig, pageWidth, pageHeight float64) Rect {
	x := float64(cfg.XOffset)
	if cfg.XOffset < 0 {
		x = pageWidth + float64(cfg.XOffset)
	}

	y := float64(cfg.YOffset)
	if cfg.YOffset < 0 {
		y = pageHeight + float64(cfg.YOffset)
	}

	return Rect{
		LLX: x,
		LLY: y,
		URX: x + float64(cfg.Width),
		URY: y + float64(cfg.Height),
	}
}
