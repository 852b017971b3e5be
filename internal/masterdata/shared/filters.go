package shared

// ListFilters carries common listing options for master data.
type ListFilters struct {
	Search     string
	CategoryID *int64
	IsActive   *bool
	LowStock   bool
	SortBy     string
	SortDir    string
	Limit      int
	Offset     int
}
