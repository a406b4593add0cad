package serving

import (
	"strings"
	"sync"
)

// Identity is the immutable-after-construction identity of the served model.
// The versioned name is resolved lazily and cached under a lock; first
// resolution may pull the version and labels from the model spec's tag.
type Identity struct {
	Name     string
	Protocol string

	mu            sync.Mutex
	version       string
	labels        map[string]string
	spec          *ModelSpec
	versionedName string
}

func newIdentity(name, protocol string, spec *ModelSpec) *Identity {
	id := &Identity{Name: name, Protocol: protocol, spec: spec}
	if id.Protocol == "" {
		id.Protocol = "v2"
	}
	if i := strings.IndexByte(name, ':'); i >= 0 {
		id.Name = name[:i]
		id.version = name[i+1:]
	}
	if spec != nil && spec.Labels != nil {
		id.labels = spec.Labels
	}
	return id
}

// Version returns the explicit or resolved version, empty if neither exists.
func (id *Identity) Version() string {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.version
}

// Labels returns the labels attached to the model artifact, if any.
func (id *Identity) Labels() map[string]string {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.labels
}

// Spec returns the model spec captured at construction, possibly nil.
func (id *Identity) Spec() *ModelSpec { return id.spec }

// ResolvedVersion returns the version reported in response envelopes: the
// explicit or artifact-derived version, defaulting to "latest".
func (id *Identity) ResolvedVersion() string {
	id.VersionedName()
	id.mu.Lock()
	defer id.mu.Unlock()
	if id.version == "" {
		return "latest"
	}
	return id.version
}

// VersionedName returns "name:version", defaulting version to "latest".
// When no explicit version is set the model spec's tag is adopted on first
// call; the result is computed once under the lock and cached.
func (id *Identity) VersionedName() string {
	id.mu.Lock()
	defer id.mu.Unlock()
	if id.versionedName != "" {
		return id.versionedName
	}
	if id.version == "" && id.spec != nil && id.spec.Tag != "" {
		id.version = id.spec.Tag
		if id.spec.Labels != nil {
			id.labels = id.spec.Labels
		}
	}
	version := id.version
	if version == "" {
		version = "latest"
	}
	id.versionedName = id.Name + ":" + version
	return id.versionedName
}
