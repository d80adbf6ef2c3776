package raster

// Tri is a three-valued suitability verdict. No-data pixels stay no-data
// through thresholding and boolean combination rather than collapsing to
// false, so a missing measurement is never reported as "unsuitable".
type Tri int8

const (
	TriNoData Tri = iota
	TriFalse
	TriTrue
)

// String returns the verdict name for logs and reports.
func (t Tri) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return "nodata"
	}
}

// And combines two verdicts with Kleene logic: false dominates, then no-data.
func (t Tri) And(o Tri) Tri {
	if t == TriFalse || o == TriFalse {
		return TriFalse
	}
	if t == TriNoData || o == TriNoData {
		return TriNoData
	}
	return TriTrue
}

// Mask is a three-valued field on a Grid, derived from thresholding an
// indicator field. Cells are row-major like Field.Values.
type Mask struct {
	Grid  Grid
	Cells []Tri
}

// NewMask allocates a mask on g with every cell set to no-data.
func NewMask(g Grid) *Mask {
	return &Mask{Grid: g, Cells: make([]Tri, g.Size())}
}

// At returns the verdict at (col, row).
func (m *Mask) At(col, row int) Tri {
	return m.Cells[row*m.Grid.Cols+col]
}

// Set writes the verdict at (col, row).
func (m *Mask) Set(col, row int, t Tri) {
	m.Cells[row*m.Grid.Cols+col] = t
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	cells := make([]Tri, len(m.Cells))
	copy(cells, m.Cells)
	return &Mask{Grid: m.Grid, Cells: cells}
}

// MaskStats counts verdicts per class.
type MaskStats struct {
	True   int `json:"true"`
	False  int `json:"false"`
	NoData int `json:"nodata"`
}

// SuitableFraction returns the share of decided (non-no-data) cells that are
// true, or 0 when no cell is decided.
func (s MaskStats) SuitableFraction() float64 {
	decided := s.True + s.False
	if decided == 0 {
		return 0
	}
	return float64(s.True) / float64(decided)
}

// Summarize tallies the mask's verdicts.
func (m *Mask) Summarize() MaskStats {
	var st MaskStats
	for _, c := range m.Cells {
		switch c {
		case TriTrue:
			st.True++
		case TriFalse:
			st.False++
		default:
			st.NoData++
		}
	}
	return st
}
