package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// recordFields is the field projection requested on every artwork fetch.
// Keeping the projection fixed keeps cache keys stable across callers.
var recordFields = []string{
	"id",
	"title",
	"place_of_origin",
	"artist_display",
	"inscriptions",
	"date_start",
	"date_end",
}

// Sortable field names accepted by the /artworks endpoint.
const (
	SortTitle     = "title"
	SortOrigin    = "place_of_origin"
	SortDateStart = "date_start"
)

// PageRequest describes one page fetch.
type PageRequest struct {
	// Page is the 1-based page number.
	Page int

	// Limit is the page size.
	Limit int

	// SortField is empty for server default order.
	SortField string

	// SortDesc requests descending order for SortField.
	SortDesc bool
}

// Validate checks the request parameters.
func (r PageRequest) Validate() error {
	if r.Page < 1 {
		return fmt.Errorf("page must be >= 1 (got %d)", r.Page)
	}
	if r.Limit < 1 {
		return fmt.Errorf("limit must be >= 1 (got %d)", r.Limit)
	}
	return nil
}

// Values returns the query parameters for the request.
func (r PageRequest) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(r.Page))
	v.Set("limit", strconv.Itoa(r.Limit))
	v.Set("fields", strings.Join(recordFields, ","))
	if r.SortField != "" {
		sort := r.SortField
		if r.SortDesc {
			sort += ":desc"
		}
		v.Set("sort_by", sort)
	}
	return v
}

// Next returns the request for the following page with identical size and sort.
func (r PageRequest) Next() PageRequest {
	r.Page++
	return r
}
