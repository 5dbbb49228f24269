package priority

// FilterStatistics explains where items went during filtering.
type FilterStatistics struct {
	TotalItemsProcessed  int `json:"total_items_processed"`
	FilteredByScore      int `json:"filtered_by_score"`
	FilteredByTier       int `json:"filtered_by_tier"`
	FilteredByComplexity int `json:"filtered_by_complexity"`
	FilteredAsDuplicate  int `json:"filtered_as_duplicate"`
	ItemsAdded           int `json:"items_added"`
}

// TotalFiltered is the number of items dropped for any reason.
func (s FilterStatistics) TotalFiltered() int {
	return s.FilteredByScore + s.FilteredByTier + s.FilteredByComplexity + s.FilteredAsDuplicate
}

// AcceptanceRate is the percentage of processed items that were kept.
func (s FilterStatistics) AcceptanceRate() float64 {
	if s.TotalItemsProcessed == 0 {
		return 0
	}
	return float64(s.ItemsAdded) / float64(s.TotalItemsProcessed) * 100
}

// Consistent reports whether every processed item is accounted for.
func (s FilterStatistics) Consistent() bool {
	return s.TotalItemsProcessed == s.TotalFiltered()+s.ItemsAdded
}

