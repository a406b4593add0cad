package serving

import (
	"context"
	"strconv"
	"sync"
)

// MemoryRegistry is an in-memory RegistryClient for tests. It records call
// counts and the attribute sets passed to PatchEndpoint.
type MemoryRegistry struct {
	mu      sync.Mutex
	records map[string]*EndpointRecord
	nextUID int

	GetCalls    int
	CreateCalls int
	PatchCalls  int
	Patches     []map[string]any
	// Err, when set, is returned by every call (simulates an unreachable
	// registry).
	Err error
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{records: make(map[string]*EndpointRecord)}
}

func registryKey(project, name, functionName, functionTag string) string {
	return project + "/" + name + "/" + functionName + ":" + functionTag
}

func (r *MemoryRegistry) GetEndpoint(_ context.Context, project, name, functionName, functionTag string) (*EndpointRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GetCalls++
	if r.Err != nil {
		return nil, r.Err
	}
	rec, ok := r.records[registryKey(project, name, functionName, functionTag)]
	if !ok {
		return nil, ErrEndpointNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *MemoryRegistry) CreateEndpoint(_ context.Context, record *EndpointRecord) (*EndpointRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CreateCalls++
	if r.Err != nil {
		return nil, r.Err
	}
	r.nextUID++
	cp := *record
	cp.UID = "ep-" + strconv.Itoa(r.nextUID)
	r.records[registryKey(cp.Project, cp.Name, cp.FunctionName, cp.FunctionTag)] = &cp
	out := cp
	return &out, nil
}

func (r *MemoryRegistry) PatchEndpoint(_ context.Context, project, name, uid string, attributes map[string]any) (*EndpointRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PatchCalls++
	if r.Err != nil {
		return nil, r.Err
	}
	r.Patches = append(r.Patches, attributes)
	for _, rec := range r.records {
		if rec.Project == project && rec.Name == name && rec.UID == uid {
			applyAttributes(rec, attributes)
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrEndpointNotFound
}

func applyAttributes(rec *EndpointRecord, attributes map[string]any) {
	for key, val := range attributes {
		switch key {
		case "function_uid":
			rec.FunctionUID, _ = val.(string)
		case "model_name":
			rec.ModelName, _ = val.(string)
		case "model_uid":
			rec.ModelUID, _ = val.(string)
		case "model_tag":
			rec.ModelTag, _ = val.(string)
		case "model_db_key":
			rec.ModelDBKey, _ = val.(string)
		case "model_class":
			rec.ModelClass, _ = val.(string)
		case "monitoring_mode":
			rec.MonitoringMode, _ = val.(string)
		case "labels":
			rec.Labels, _ = val.(map[string]string)
		}
	}
}
