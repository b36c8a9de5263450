package catalog

// Artwork is one catalog record as returned by the /artworks endpoint.
// DateEnd is not guaranteed by the source to be >= DateStart; values are
// carried verbatim.
type Artwork struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	PlaceOfOrigin string `json:"place_of_origin"`
	ArtistDisplay string `json:"artist_display"`
	Inscriptions  string `json:"inscriptions"`
	DateStart     int    `json:"date_start"`
	DateEnd       int    `json:"date_end"`
}

// Pagination is the metadata block of a page envelope.
// CurrentPage is 1-based.
type Pagination struct {
	Total       int `json:"total"`
	Limit       int `json:"limit"`
	Offset      int `json:"offset"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
}

// Page is one server-paginated slice of artworks plus pagination metadata.
type Page struct {
	Artworks   []Artwork
	Pagination Pagination
}

// IDs returns the record identifiers of the page in server-returned order.
func (p *Page) IDs() []int {
	ids := make([]int, len(p.Artworks))
	for i, a := range p.Artworks {
		ids[i] = a.ID
	}
	return ids
}

// envelope mirrors the wire format of /artworks responses.
type envelope struct {
	Data       []Artwork  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
