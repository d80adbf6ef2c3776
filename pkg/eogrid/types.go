package eogrid

import "time"

// GridSpec describes the pixel layout of an exported scene.
type GridSpec struct {
	Cols     int     `json:"cols"`
	Rows     int     `json:"rows"`
	MinX     float64 `json:"min_x"`
	MinY     float64 `json:"min_y"`
	CellSize float64 `json:"cell_size"`
	SRID     int     `json:"srid"`
}

// SceneMeta identifies one acquisition in a collection.
type SceneMeta struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Time       time.Time `json:"time"`
	CloudCover float64   `json:"cloud_cover"`
}

// SceneData is an exported scene: grid layout plus the requested bands as
// row-major sample arrays. Null samples mark no-data.
type SceneData struct {
	Meta  SceneMeta             `json:"meta"`
	Grid  GridSpec              `json:"grid"`
	Bands map[string][]*float64 `json:"bands"`
}

// ListScenesRequest narrows a collection listing. Zero values mean
// "unfiltered" for their dimension.
type ListScenesRequest struct {
	Collection string
	Start      time.Time
	End        time.Time
	// MonthMin/MonthMax restrict to calendar months (1-12), inclusive.
	MonthMin int
	MonthMax int
	// BBox is minx,miny,maxx,maxy in the collection's CRS.
	BBox [4]float64
	HasBBox bool
	// MaxCloud caps the scene cloud-cover percentage; negative disables.
	MaxCloud float64
}
