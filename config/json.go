package config

import (
	"bytes"
	"encoding/json"
)

// UnmarshalJSON decodes path_templates with a streaming token reader
// instead of straight into the map, so OrderedPathTemplates can still
// answer "which pattern came first" after Go's map randomizes iteration.
func (m *MockConfig) UnmarshalJSON(data []byte) error {
	type alias MockConfig
	var raw struct {
		alias
		PathTemplatesRaw json.RawMessage `json:"path_templates,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = MockConfig(raw.alias)
	m.PathTemplates = nil
	m.orderedTemplates = nil

	if len(raw.PathTemplatesRaw) == 0 || string(raw.PathTemplatesRaw) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.PathTemplatesRaw))
	if _, err := dec.Token(); err != nil { // opening '{'
		return err
	}
	m.PathTemplates = map[string]MockResponseTemplate{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var tmpl MockResponseTemplate
		if err := dec.Decode(&tmpl); err != nil {
			return err
		}
		m.PathTemplates[key] = tmpl
		m.orderedTemplates = append(m.orderedTemplates, MockPathTemplateEntry{Pattern: key, Template: tmpl})
	}
	return nil
}

// UnmarshalJSON accepts Backends.https as either a single object or an
// array of HTTPS upstreams sharing one endpoint; dispatch uses the first.
func (b *Backends) UnmarshalJSON(data []byte) error {
	type alias Backends
	var raw struct {
		alias
		HTTPSRaw json.RawMessage `json:"https,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Backends(raw.alias)
	b.HTTPS = nil
	b.HTTPSList = nil

	if len(raw.HTTPSRaw) == 0 || string(raw.HTTPSRaw) == "null" {
		return nil
	}
	if raw.HTTPSRaw[0] == '[' {
		var list []HTTPSBackend
		if err := json.Unmarshal(raw.HTTPSRaw, &list); err != nil {
			return err
		}
		b.HTTPSList = list
		return nil
	}
	var single HTTPSBackend
	if err := json.Unmarshal(raw.HTTPSRaw, &single); err != nil {
		return err
	}
	b.HTTPS = &single
	return nil
}

// UnmarshalJSON accepts Endpoint.backends as either a single Backends
// object or an array of them; when it's a list, dispatch uses the first
// element.
func (e *Endpoint) UnmarshalJSON(data []byte) error {
	type alias Endpoint
	var raw struct {
		alias
		BackendsRaw json.RawMessage `json:"backends,omitempty"`
	}
	raw.Weight = 100
	raw.TimeoutSecs = 30
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Endpoint(raw.alias)
	e.Backends = nil
	e.BackendsList = nil

	if len(raw.BackendsRaw) == 0 || string(raw.BackendsRaw) == "null" {
		return nil
	}
	if raw.BackendsRaw[0] == '[' {
		var list []Backends
		if err := json.Unmarshal(raw.BackendsRaw, &list); err != nil {
			return err
		}
		e.BackendsList = list
		return nil
	}
	var single Backends
	if err := json.Unmarshal(raw.BackendsRaw, &single); err != nil {
		return err
	}
	e.Backends = &single
	return nil
}

// AllBackends flattens Backends/BackendsList into one slice, the shape every
// consumer (routing, dispatch, status endpoints) actually wants to walk.
func (e *Endpoint) AllBackends() []Backends {
	if e.Backends != nil {
		return []Backends{*e.Backends}
	}
	return e.BackendsList
}

// AllHTTPS flattens HTTPS/HTTPSList into one slice, ordered as configured.
func (b *Backends) AllHTTPS() []HTTPSBackend {
	if b.HTTPS != nil {
		return []HTTPSBackend{*b.HTTPS}
	}
	return b.HTTPSList
}
