package heightfield

var neighbourOffsets = [4][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}

func spanTop(col []Span, i int) int {
	if i+1 < len(col) {
		return int(col[i+1].Min)
	}
	return MaxHeight
}

// FilterLedgeSpans marks spans unwalkable when a neighbour drops further than
// walkableClimb, or when the reachable neighbours differ in height by more
// than walkableClimb. Cells outside the grid are not treated as drops; the
// outer ring of a tile height field is the build border.
func (hf *Heightfield) FilterLedgeSpans(walkableHeight, walkableClimb int) {
	w, h := int(hf.Width), int(hf.Height)
	for y := range h {
		for x := range w {
			col := hf.Columns[x+y*w]
			for i := range col {
				s := &col[i]
				if !s.Walkable() {
					continue
				}
				bot := int(s.Max)
				top := spanTop(col, i)

				minh := MaxHeight
				asmin, asmax := bot, bot

				for _, off := range neighbourOffsets {
					nx, ny := x+off[0], y+off[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					ncol := hf.Columns[nx+ny*w]

					nbot := -walkableClimb
					ntop := MaxHeight
					if len(ncol) > 0 {
						ntop = int(ncol[0].Min)
					}
					if min(top, ntop)-max(bot, nbot) > walkableHeight {
						minh = min(minh, nbot-bot)
					}

					for j := range ncol {
						nbot = int(ncol[j].Max)
						ntop = spanTop(ncol, j)
						if min(top, ntop)-max(bot, nbot) > walkableHeight {
							minh = min(minh, nbot-bot)
							if abs(nbot-bot) <= walkableClimb {
								asmin = min(asmin, nbot)
								asmax = max(asmax, nbot)
							}
						}
					}
				}

				if minh < -walkableClimb || asmax-asmin > walkableClimb {
					s.Area = AreaNull
				}
			}
		}
	}
}
