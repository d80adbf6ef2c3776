package raster

import "testing"

func TestTri_And(t *testing.T) {
	cases := []struct {
		a, b, want Tri
	}{
		{TriTrue, TriTrue, TriTrue},
		{TriTrue, TriFalse, TriFalse},
		{TriFalse, TriNoData, TriFalse},
		{TriTrue, TriNoData, TriNoData},
		{TriNoData, TriNoData, TriNoData},
	}
	for _, tc := range cases {
		if got := tc.a.And(tc.b); got != tc.want {
			t.Errorf("%s AND %s = %s, want %s", tc.a, tc.b, got, tc.want)
		}
		// Kleene AND is commutative.
		if got := tc.b.And(tc.a); got != tc.want {
			t.Errorf("%s AND %s = %s, want %s", tc.b, tc.a, got, tc.want)
		}
	}
}

func TestMask_Summarize(t *testing.T) {
	m := NewMask(testGrid(2, 2))
	m.Set(0, 0, TriTrue)
	m.Set(1, 0, TriTrue)
	m.Set(0, 1, TriFalse)
	// (1,1) left as no-data.

	st := m.Summarize()
	if st.True != 2 || st.False != 1 || st.NoData != 1 {
		t.Errorf("got %+v, want 2/1/1", st)
	}
	if got := st.SuitableFraction(); got != 2.0/3.0 {
		t.Errorf("SuitableFraction = %v, want 2/3", got)
	}
}

func TestMaskStats_SuitableFraction_NoDecided(t *testing.T) {
	st := MaskStats{NoData: 10}
	if got := st.SuitableFraction(); got != 0 {
		t.Errorf("SuitableFraction with nothing decided = %v, want 0", got)
	}
}
