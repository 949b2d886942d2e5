package cache

// Keyer builds cache keys. Implementations must return equal keys for equal
// inputs and distinct keys for anything that changes the cached value.
type Keyer interface {
	LayoutKey(requestHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the options that change placement.
type LayoutKeyOpts struct {
	Packer string `json:"packer"`
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	WellSize float64 `json:"well_size,omitempty"`
	Labels   bool    `json:"labels,omitempty"`
	Title    string  `json:"title,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns the key for a placed layout.
func (DefaultKeyer) LayoutKey(requestHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", requestHash, opts)
}

// ArtifactKey returns the key for a rendered artifact of a layout, identified
// by the hash of its content.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
