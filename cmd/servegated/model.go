package main

import "servegate/internal/serving"

// echoModel is the built-in capability used when servegated runs standalone:
// it echoes each input row back as its output. Real deployments embed the
// dispatcher with their own serving.Model implementation.
type echoModel struct {
	spec *serving.ModelSpec
}

func newEchoModel() *echoModel {
	return &echoModel{spec: &serving.ModelSpec{
		Key:   "echo",
		Tag:   "latest",
		Class: "EchoModel",
		Inputs: []serving.Feature{
			{Name: "value", ValueType: "any"},
		},
		Outputs: []serving.Feature{
			{Name: "value", ValueType: "any"},
		},
	}}
}

func (m *echoModel) Spec() *serving.ModelSpec { return m.spec }

func (m *echoModel) Load() error { return nil }

func (m *echoModel) Predict(request map[string]any) (any, error) {
	inputs, _ := request["inputs"].([]any)
	return inputs, nil
}

func (m *echoModel) Explain(request map[string]any) (any, error) {
	inputs, _ := request["inputs"].([]any)
	return map[string]any{"explanation": "echoed input", "outputs": inputs}, nil
}
