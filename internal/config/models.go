// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package config

import "fmt"

// ModelMap resolves a client-facing model name to the upstream's internal
// model identifier. Two instances exist, domestic and international; they
// diverge on how an unknown name is handled.
type ModelMap struct {
	entries       map[string]string
	defaultModel  string
	rejectUnknown bool
}

// NewModelMap builds a map. rejectUnknown=true makes Resolve fail hard on
// an unknown name (international); false falls back to defaultModel
// (domestic). Open Question (ii) flags this asymmetry as possibly
// unintentional, so it stays an explicit constructor argument rather than
// a hardcoded branch on region.
func NewModelMap(entries map[string]string, defaultModel string, rejectUnknown bool) ModelMap {
	return ModelMap{entries: entries, defaultModel: defaultModel, rejectUnknown: rejectUnknown}
}

// Resolve maps a client model name to the upstream identifier.
func (m ModelMap) Resolve(name string) (string, error) {
	if v, ok := m.entries[name]; ok {
		return v, nil
	}
	if m.rejectUnknown {
		return "", fmt.Errorf("unknown model %q", name)
	}
	return m.entries[m.defaultModel], nil
}

// Names lists the client-facing model names this map knows about, for the
// GET /v1/models catalog.
func (m ModelMap) Names() []string {
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	return names
}

// DomesticModels is the default domestic mapping table.
var DomesticModels = NewModelMap(map[string]string{
	"jimeng-3.0":  "high_aes_general_v30l_art_fangzhou",
	"jimeng-2.1":  "high_aes_general_v21l_art_fangzhou",
	"jimeng-2.0":  "high_aes_general_v20l_art_fangzhou",
	"jimeng-4.0":  "high_aes_general_v40",
	"nanobanana":  "nanobanana_v1",
}, "jimeng-3.0", false)

// InternationalModels is the default international mapping table.
var InternationalModels = NewModelMap(map[string]string{
	"jimeng-3.0": "high_aes_general_v30l_art_fangzhou",
	"jimeng-4.0": "high_aes_general_v40",
	"nanobanana": "nanobanana_v1",
}, "jimeng-3.0", true)

const NanobananaModel = "nanobanana"
