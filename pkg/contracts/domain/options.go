package domain

// FilterOptions are the distinct values a client can offer per dimension.
type FilterOptions struct {
	Countries          []string `json:"countries"`
	Categories         []string `json:"categories"`
	Nutrients          []string `json:"nutrients"`
	Units              []string `json:"units"`
	WaterTypes         []string `json:"water_types"`
	ErosionLevels      []string `json:"erosion_levels"`
	Statuses           []string `json:"statuses"`
	ContaminationTypes []string `json:"contamination_types"`
	MinYear            int      `json:"min_year"`
	MaxYear            int      `json:"max_year"`
}

// DatasetInfo summarises the loaded dataset.
type DatasetInfo struct {
	Source   string `json:"source"`
	Format   string `json:"format"`
	Rows     int    `json:"rows"`
	LoadedAt string `json:"loaded_at"`
	MinYear  int    `json:"min_year"`
	MaxYear  int    `json:"max_year"`
}
