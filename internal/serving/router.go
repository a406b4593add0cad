package serving

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Handle is the single entrypoint used by the hosting runtime. It classifies
// the event into an operation, applies the readiness policy, dispatches to
// the matching handler and writes the response into the event body.
// Inference failures propagate after best-effort telemetry emission;
// telemetry failures never propagate.
func (s *ModelServer) Handle(ctx context.Context, ev *Event) (*Event, error) {
	start := time.Now().UTC()
	originalBody := ev.Body
	body := extractInputPath(s.cfg.InputPath, ev.Body)

	eventID := ev.ID
	if eventID == "" {
		eventID = uuid.NewString()
		ev.ID = eventID
	}
	var op string
	if m, ok := body.(map[string]any); ok {
		if v, _ := m["operation"].(string); v != "" {
			op = v
		}
		if v, _ := m["id"].(string); v != "" {
			eventID = v
		}
	}
	if op == "" {
		// Trailing path segment names the operation.
		segments := strings.Split(strings.Trim(ev.Path, "/"), "/")
		op = segments[len(segments)-1]
	}
	if op == "" && ev.Method != http.MethodGet {
		op = "infer"
	}

	out, err := s.dispatch(ctx, ev, body, originalBody, op, eventID, start)
	requestsTotal.WithLabelValues(s.opLabel(op, ev.Method), statusLabel(err)).Inc()
	return out, err
}

func (s *ModelServer) dispatch(ctx context.Context, ev *Event, body, originalBody any, op, eventID string, start time.Time) (*Event, error) {
	switch {
	case op == "predict" || op == "infer" || op == "predict_dict" || op == "infer_dict":
		response, err := s.handleInference(ev, body, op, eventID, start, s.model.Predict, true)
		if err != nil {
			return nil, err
		}
		ev.Body = updateResultPath(s.cfg.ResultPath, originalBody, response)
		return ev, nil

	case op == "explain":
		response, err := s.handleInference(ev, body, op, eventID, start, s.model.Explain, false)
		if err != nil {
			return nil, err
		}
		ev.Body = updateResultPath(s.cfg.ResultPath, originalBody, response)
		return ev, nil

	case op == "ready" && ev.Method == http.MethodGet:
		// Health check: terminal, raw status, bypasses telemetry.
		ev.Terminated = true
		if s.gate.Ready() {
			ev.StatusCode = http.StatusOK
			ev.Body = fmt.Sprintf("model %s is ready (event_id = %s)", s.identity.Name, eventID)
		} else {
			ev.StatusCode = http.StatusRequestTimeout
			ev.Body = "model not ready"
		}
		return ev, nil

	case op == "" && ev.Method == http.MethodGet:
		// Model metadata: terminal, never blocked on readiness.
		ev.Terminated = true
		ev.Body = updateResultPath(s.cfg.ResultPath, originalBody, s.metadata())
		return ev, nil

	default:
		if fn, ok := s.ops[op]; ok {
			response, err := fn(ctx, ev)
			if err != nil {
				return nil, err
			}
			ev.Terminated = true
			ev.Body = updateResultPath(s.cfg.ResultPath, originalBody, response)
			return ev, nil
		}
		return nil, ErrInvalidOperation(op, ev.Method)
	}
}

// handleInference runs the shared predict/explain path: readiness, optional
// dict expansion, preprocess, validate, the model call, and telemetry.
func (s *ModelServer) handleInference(ev *Event, body any, op, eventID string, start time.Time, call func(map[string]any) (any, error), withTimestamp bool) (map[string]any, error) {
	request, err := s.preEventProcessing(ev, body, op)
	if err != nil {
		return nil, err
	}
	outputs, err := call(request)
	if err != nil {
		request["id"] = eventID
		s.telemetry().push(start, request, nil, op, err, s.partitionKey(), s.EndpointUID())
		return nil, ErrInference(op, err)
	}

	response := map[string]any{
		"id":         eventID,
		"model_name": s.identity.Name,
		"outputs":    outputs,
	}
	if withTimestamp {
		response["timestamp"] = start.Format(timestampLayout)
	}
	response["model_version"] = s.identity.ResolvedVersion()
	if withTimestamp && s.cfg.Postprocess != nil {
		response, err = s.cfg.Postprocess(response)
		if err != nil {
			return nil, err
		}
	}

	if p := s.telemetry(); p != nil {
		trackReq, trackResp := request, any(response)
		if s.cfg.LoggedResults != nil {
			inputs, outputs := s.cfg.LoggedResults(request, response, op)
			if inputs != nil || outputs != nil {
				if inputs == nil {
					inputs = []any{}
				}
				if outputs == nil {
					outputs = []any{}
				}
				trackReq = map[string]any{"id": eventID, "inputs": inputs}
				trackResp = map[string]any{"outputs": outputs}
			}
		}
		p.push(start, trackReq, trackResp, op, nil, s.partitionKey(), s.EndpointUID())
	}
	return response, nil
}

// preEventProcessing applies the readiness policy and normalizes the request
// body before the model call.
func (s *ModelServer) preEventProcessing(ev *Event, body any, op string) (map[string]any, error) {
	if err := s.gate.await(s.identity.Name, ev.Trigger); err != nil {
		return nil, err
	}
	request, ok := body.(map[string]any)
	if !ok {
		return nil, ErrValidation("request body must be a JSON object")
	}
	if strings.Contains(op, "_dict") {
		var err error
		request, err = s.inputsToList(request)
		if err != nil {
			return nil, err
		}
	}
	if s.cfg.Preprocess != nil {
		var err error
		request, err = s.cfg.Preprocess(request, op)
		if err != nil {
			return nil, err
		}
	}
	return s.validate(request, op)
}

// validate enforces the protocol contract; under v2 the request must carry
// an "inputs" list.
func (s *ModelServer) validate(request map[string]any, op string) (map[string]any, error) {
	if s.cfg.Validate != nil {
		return s.cfg.Validate(request, op)
	}
	if s.identity.Protocol == "v2" {
		inputs, ok := request["inputs"]
		if !ok {
			return nil, ErrValidation(`expected key "inputs" in request body`)
		}
		if _, ok := inputs.([]any); !ok {
			return nil, ErrValidation(`expected "inputs" to be a list`)
		}
	}
	return request, nil
}

// inputsToList expands dict-keyed inputs into ordered-list form using the
// model's declared input-feature order.
func (s *ModelServer) inputsToList(request map[string]any) (map[string]any, error) {
	spec := s.identity.Spec()
	if spec == nil || len(spec.Inputs) == 0 {
		return nil, ErrInvalidArgument(
			"the predict_dict and infer_dict operations require a model with a declared input schema")
	}
	order := make([]string, len(spec.Inputs))
	for i, f := range spec.Inputs {
		order[i] = f.Name
	}

	switch inputs := request["inputs"].(type) {
	case map[string]any:
		row, missing := orderedRow(inputs, order)
		if len(missing) > 0 {
			return nil, missingKeysError(missing)
		}
		request["inputs"] = row
	case []any:
		rows := make([]any, len(inputs))
		for i, item := range inputs {
			dict, ok := item.(map[string]any)
			if !ok {
				return nil, ErrInvalidArgument(
					"dict operations require inputs of type list of objects or a single object")
			}
			row, missing := orderedRow(dict, order)
			if len(missing) > 0 {
				return nil, missingKeysError(missing)
			}
			rows[i] = row
		}
		request["inputs"] = rows
	default:
		return nil, ErrInvalidArgument(
			"dict operations require inputs of type list of objects or a single object")
	}
	return request, nil
}

func orderedRow(dict map[string]any, order []string) ([]any, []string) {
	row := make([]any, 0, len(order))
	var missing []string
	for _, key := range order {
		v, ok := dict[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		row = append(row, v)
	}
	sort.Strings(missing)
	return row, missing
}

func missingKeysError(missing []string) error {
	return ErrInvalidArgument("input object is missing required keys: " + strings.Join(missing, ", "))
}

// metadata builds the model metadata response body.
func (s *ModelServer) metadata() map[string]any {
	body := map[string]any{
		"name":    s.identity.Name,
		"version": s.identity.Version(),
		"inputs":  []Feature{},
		"outputs": []Feature{},
	}
	if spec := s.identity.Spec(); spec != nil {
		if spec.Inputs != nil {
			body["inputs"] = spec.Inputs
		}
		if spec.Outputs != nil {
			body["outputs"] = spec.Outputs
		}
	}
	return body
}

// opLabel keeps metric label cardinality bounded: arbitrary client-supplied
// operation names collapse to "invalid".
func (s *ModelServer) opLabel(op, method string) string {
	switch op {
	case "predict", "infer", "predict_dict", "infer_dict", "explain", "ready":
		return op
	case "":
		if method == http.MethodGet {
			return "metadata"
		}
		return "invalid"
	}
	if _, ok := s.ops[op]; ok {
		return op
	}
	return "invalid"
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
