package cache

import "time"

// Keyer generates cache keys for normalization results.
type Keyer interface {
	// ResultKey identifies the document produced from an input whose content
	// hash is inputHash.
	ResultKey(source, inputHash string, opts ResultKeyOpts) string
}

// ResultKeyOpts holds the options that change the normalized output.
type ResultKeyOpts struct {
	NoExtra    bool   `json:"no_extra"`
	Timezone   string `json:"timezone"` // resolved zone, never the bare "Local"
	Strict     bool   `json:"strict"`
	IncludeDev bool   `json:"include_dev"`
}

// DefaultKeyer produces "result:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(source, inputHash string, opts ResultKeyOpts) string {
	return hashKey("result", source, inputHash, opts)
}

// ScopedKeyer prefixes every key produced by an inner keyer, so several
// deployments can share one Redis database.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "pkgnorm:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means the
// default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResultKey implements Keyer.
func (k *ScopedKeyer) ResultKey(source, inputHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(source, inputHash, opts)
}

// DefaultTTL is how long cached results live unless configured otherwise.
const DefaultTTL = 7 * 24 * time.Hour
