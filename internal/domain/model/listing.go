package model

// Listing is one normalized job posting. All fields are plain strings so two
// listings are the same posting exactly when they compare equal with ==.
//
// The JSON tags are declared in alphabetical order: encoding/json emits struct
// fields in declaration order, which keeps the snapshot files key-sorted.
// Category is not persisted; the snapshot file name already carries it.
type Listing struct {
	Category     PositionKey `json:"-"`
	Company      string      `json:"company"`
	CreatedAt    string      `json:"created_at"`
	Description  string      `json:"description"`
	Experience   string      `json:"experience"`
	Location     string      `json:"location"`
	Name         string      `json:"name"`
	PublishedAt  string      `json:"published_at"`
	Requirements string      `json:"requirements"`
	Salary       string      `json:"salary"`
	Schedule     string      `json:"schedule"`
	Skills       string      `json:"skills"`
	URL          string      `json:"url"`
}

// NewListings returns the entries of fetched that are not present in prior,
// keeping the fetched order. Order inside either slice does not affect membership.
func NewListings(fetched, prior []Listing) []Listing {
	seen := make(map[Listing]struct{}, len(prior))
	for _, l := range prior {
		seen[l] = struct{}{}
	}
	var fresh []Listing
	for _, l := range fetched {
		if _, ok := seen[l]; ok {
			continue
		}
		fresh = append(fresh, l)
	}
	return fresh
}
