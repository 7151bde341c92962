package store

type OffsetPage struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

func totalPages(total int64, pageSize int) int {
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}

// clampPage keeps page inside [1, pages]. An out-of-range page falls back to
// the last page, a non-positive one to the first.
func clampPage(page, pages int) int {
	if page < 1 {
		return 1
	}
	if pages > 0 && page > pages {
		return pages
	}
	return page
}
