package repositories

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageBounds normalizes caller paging. A missing or oversized limit falls
// back to defaultPageSize and a negative offset starts at the first row.
func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
