package serving

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Monitoring modes recorded on the endpoint record.
const (
	MonitoringEnabled  = "enabled"
	MonitoringDisabled = "disabled"
)

// ErrEndpointNotFound is returned by registry clients when no record exists
// for the requested (project, name, function) key. Any other error is
// treated as a soft failure by the registrar.
var ErrEndpointNotFound = errors.New("model endpoint not found")

// EndpointRecord is the registry's durable representation of one deployed
// model instance. Attribute names double as patch field keys.
type EndpointRecord struct {
	UID            string            `json:"uid,omitempty"`
	Project        string            `json:"project"`
	Name           string            `json:"name"`
	FunctionName   string            `json:"function_name"`
	FunctionTag    string            `json:"function_tag"`
	FunctionUID    string            `json:"function_uid,omitempty"`
	ModelName      string            `json:"model_name,omitempty"`
	ModelUID       string            `json:"model_uid,omitempty"`
	ModelTag       string            `json:"model_tag,omitempty"`
	ModelDBKey     string            `json:"model_db_key,omitempty"`
	ModelClass     string            `json:"model_class,omitempty"`
	Labels         map[string]string `json:"labels,omitempty"`
	MonitoringMode string            `json:"monitoring_mode,omitempty"`
}

// RegistryClient is the remote endpoint registry collaborator.
type RegistryClient interface {
	GetEndpoint(ctx context.Context, project, name, functionName, functionTag string) (*EndpointRecord, error)
	CreateEndpoint(ctx context.Context, record *EndpointRecord) (*EndpointRecord, error)
	PatchEndpoint(ctx context.Context, project, name, uid string, attributes map[string]any) (*EndpointRecord, error)
}

// endpointRegistrar reconciles the local model identity against the remote
// registry: at most one create per process, a single minimal patch on drift,
// and soft failure (log, empty uid) when the registry is unreachable.
type endpointRegistrar struct {
	client RegistryClient
	host   HostContext
	log    zerolog.Logger
}

// reconcile resolves the endpoint uid for this serving instance. It never
// returns an error: registry failures are logged and reported as absence.
func (r *endpointRegistrar) reconcile(ctx context.Context, identity *Identity, modelClass string) string {
	if r.client == nil {
		return ""
	}
	functionTag := r.host.FunctionTag
	if functionTag == "" {
		functionTag = "latest"
	}
	r.log.Info().Str("model", identity.Name).Str("function", r.host.FunctionName).Msg("initializing endpoint record")

	remote, err := r.client.GetEndpoint(ctx, r.host.Project, identity.Name, r.host.FunctionName, functionTag)
	if err != nil && !errors.Is(err, ErrEndpointNotFound) {
		r.log.Info().Err(err).Msg("cannot reach the model endpoints store")
		return ""
	}

	spec := identity.Spec()
	desired := &EndpointRecord{
		Project:        r.host.Project,
		Name:           identity.Name,
		FunctionName:   r.host.FunctionName,
		FunctionTag:    functionTag,
		FunctionUID:    r.host.FunctionUID,
		ModelClass:     modelClass,
		Labels:         identity.Labels(),
		MonitoringMode: MonitoringDisabled,
	}
	if r.host.TrackModels {
		desired.MonitoringMode = MonitoringEnabled
	}
	if spec != nil {
		desired.ModelName = spec.Key
		desired.ModelUID = spec.UID
		desired.ModelTag = spec.Tag
		desired.ModelDBKey = spec.DBKey
	}

	if remote == nil {
		if !r.host.TrackModels {
			return ""
		}
		created, err := r.client.CreateEndpoint(ctx, desired)
		if err != nil {
			r.log.Info().Err(err).Msg("cannot create the model endpoint record")
			return ""
		}
		r.log.Info().Str("endpoint_uid", created.UID).Str("model", identity.Name).Msg("created model endpoint record")
		return created.UID
	}

	attributes := diffEndpoint(remote, desired)
	if len(attributes) > 0 {
		r.log.Info().Interface("attributes", attributes).Str("name", remote.Name).Msg("updating model endpoint attributes")
		patched, err := r.client.PatchEndpoint(ctx, remote.Project, remote.Name, remote.UID, attributes)
		if err != nil {
			r.log.Info().Err(err).Msg("cannot patch the model endpoint record")
			return remote.UID
		}
		return patched.UID
	}
	return remote.UID
}

// diffEndpoint computes the minimal patch: only fields that drifted from the
// remote copy appear in the returned attributes.
func diffEndpoint(remote, desired *EndpointRecord) map[string]any {
	attributes := map[string]any{}
	if desired.FunctionUID != remote.FunctionUID {
		attributes["function_uid"] = desired.FunctionUID
	}
	if desired.ModelName != remote.ModelName {
		attributes["model_name"] = desired.ModelName
	}
	if desired.ModelUID != remote.ModelUID {
		attributes["model_uid"] = desired.ModelUID
	}
	if desired.ModelTag != remote.ModelTag {
		attributes["model_tag"] = desired.ModelTag
	}
	if desired.ModelDBKey != remote.ModelDBKey {
		attributes["model_db_key"] = desired.ModelDBKey
	}
	if !labelsEqual(desired.Labels, remote.Labels) {
		attributes["labels"] = desired.Labels
	}
	if desired.ModelClass != remote.ModelClass {
		attributes["model_class"] = desired.ModelClass
	}
	if desired.MonitoringMode != remote.MonitoringMode {
		attributes["monitoring_mode"] = desired.MonitoringMode
	}
	return attributes
}

func labelsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
