package serving

import "testing"

func TestIdentityExplicitVersion(t *testing.T) {
	id := newIdentity("my:v2", "", nil)
	if id.Name != "my" || id.Version() != "v2" {
		t.Fatalf("name=%q version=%q", id.Name, id.Version())
	}
	if id.Protocol != "v2" {
		t.Fatalf("protocol=%q", id.Protocol)
	}
	if got := id.VersionedName(); got != "my:v2" {
		t.Fatalf("versioned name=%q", got)
	}
}

func TestIdentityAdoptsSpecTag(t *testing.T) {
	spec := &ModelSpec{Tag: "v7", Labels: map[string]string{"team": "ml"}}
	id := newIdentity("my", "", spec)
	if id.Version() != "" {
		t.Fatalf("version must stay empty before resolution, got %q", id.Version())
	}
	if got := id.VersionedName(); got != "my:v7" {
		t.Fatalf("versioned name=%q", got)
	}
	if id.Version() != "v7" {
		t.Fatalf("version=%q", id.Version())
	}
	if id.Labels()["team"] != "ml" {
		t.Fatalf("labels=%v", id.Labels())
	}
}

func TestIdentityExplicitVersionWinsOverTag(t *testing.T) {
	id := newIdentity("my:v2", "", &ModelSpec{Tag: "v7"})
	if got := id.VersionedName(); got != "my:v2" {
		t.Fatalf("versioned name=%q", got)
	}
}

func TestIdentityDefaultsToLatest(t *testing.T) {
	id := newIdentity("my", "", nil)
	if got := id.VersionedName(); got != "my:latest" {
		t.Fatalf("versioned name=%q", got)
	}
	if got := id.ResolvedVersion(); got != "latest" {
		t.Fatalf("resolved version=%q", got)
	}
	if got := id.VersionedName(); got != "my:latest" {
		t.Fatalf("versioned name=%q", got)
	}
}
