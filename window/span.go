package window

// Span describes the page of a list revealed by the n-th advance of a window.
type Span struct {
	Page    int // zero-based page number, clamped to the last page
	Start   int // index of the first item in the page
	End     int // index after the last item in the page; also the visible count
	HasMore bool
}

// SpanOf returns the page revealed after page advances of a window with the
// given page size over total items. Page 0 is the initial window. It is the
// stateless counterpart of Window for request/response surfaces where each
// advance arrives as a separate request.
func SpanOf(total, pageSize, page int) Span {
	if pageSize < 1 {
		pageSize = 1
	}
	if total < 0 {
		total = 0
	}
	if page < 0 {
		page = 0
	}
	last := 0
	if total > 0 {
		last = (total - 1) / pageSize
	}
	if page > last {
		page = last
	}
	start := min(page*pageSize, total)
	end := min(start+pageSize, total)
	return Span{Page: page, Start: start, End: end, HasMore: end < total}
}
