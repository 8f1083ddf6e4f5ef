package cache

// Key type labels reported to cache hooks.
const (
	KeyTypeGraph = "graph"
)

// graphKeyVersion changes whenever the extraction algorithm changes in a way
// that alters results for identical input.
const graphKeyVersion = 1

// GraphKeyOpts are the extraction options that influence the cached graph.
type GraphKeyOpts struct {
	Palette string `json:"palette"`
	Policy  string `json:"policy"`
}

// Keyer builds cache keys.
type Keyer interface {
	// GraphKey returns the key of the graph extracted from an image with the
	// given content hash.
	GraphKey(imageHash string, opts GraphKeyOpts) string
}

// DefaultKeyer hashes key components into "graph:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(imageHash string, opts GraphKeyOpts) string {
	return hashKey(KeyTypeGraph, graphKeyVersion, imageHash, opts)
}
