package book

// Result is a resolution outcome with the provider that produced it.
type Result struct {
	Metadata Metadata `json:"metadata"`
	// Source names the matching provider, empty when nothing matched.
	Source string `json:"source,omitempty"`
	// Attempts counts the providers consulted.
	Attempts int `json:"attempts"`
}

// Found reports whether any provider matched.
func (r Result) Found() bool {
	return r.Source != ""
}
