package cache

// Keyer derives cache keys from content hashes and render options.
type Keyer interface {
	// TableKey identifies a synthesized table by its scene hash and the
	// options that change the grid.
	TableKey(sceneHash string, opts TableKeyOpts) string

	// ArtifactKey identifies one rendered format of a table.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// TableKeyOpts holds the synthesis options that affect the resulting grid.
type TableKeyOpts struct {
	Tolerance  float64 `json:"tolerance"`
	Container  string  `json:"container,omitempty"`
	Candidates string  `json:"candidates,omitempty"`
}

// ArtifactKeyOpts holds everything that changes the bytes of an artifact.
type ArtifactKeyOpts struct {
	Table     TableKeyOpts `json:"table"`
	Format    string       `json:"format"`
	GridLines bool         `json:"grid_lines,omitempty"`
	Synthetic bool         `json:"synthetic,omitempty"`
	Labels    bool         `json:"labels,omitempty"`
	Borders   bool         `json:"borders,omitempty"`
	Scale     float64      `json:"scale,omitempty"`
}

// DefaultKeyer hashes the options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the keyer used by the CLI and the HTTP server.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TableKey returns "table:<sha256>".
func (DefaultKeyer) TableKey(sceneHash string, opts TableKeyOpts) string {
	return hashKey("table", sceneHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}

var _ Keyer = DefaultKeyer{}
