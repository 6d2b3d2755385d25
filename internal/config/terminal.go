// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TerminalStatusTable is the mapping from upstream `status` codes to
// success/failure classification. The exact set of terminal values is
// inferred from observation (Open Question (i)); loading it from YAML lets
// it be refreshed without a code change.
type TerminalStatusTable struct {
	Success []int    `yaml:"success"`
	Failure []int    `yaml:"failure"`
	// TransientFailCodes are fail_code values the poller should not treat
	// as terminal, e.g. codes meaning "still queued upstream".
	TransientFailCodes []string `yaml:"transient_fail_codes"`

	success map[int]bool
	failure map[int]bool
	transient map[string]bool
}

// DefaultTerminalStatusTable reflects the statuses observed in practice.
var DefaultTerminalStatusTable = MustIndex(TerminalStatusTable{
	Success:            []int{50},
	Failure:            []int{30, 40},
	TransientFailCodes: []string{"", "0"},
})

// MustIndex builds the internal lookup maps; call after constructing a
// table by hand or decoding one from YAML.
func MustIndex(t TerminalStatusTable) TerminalStatusTable {
	t.success = make(map[int]bool, len(t.Success))
	for _, s := range t.Success {
		t.success[s] = true
	}
	t.failure = make(map[int]bool, len(t.Failure))
	for _, s := range t.Failure {
		t.failure[s] = true
	}
	t.transient = make(map[string]bool, len(t.TransientFailCodes))
	for _, c := range t.TransientFailCodes {
		t.transient[c] = true
	}
	return t
}

func (t TerminalStatusTable) IsSuccess(status int) bool { return t.success[status] }
func (t TerminalStatusTable) IsFailure(status int) bool { return t.failure[status] }
func (t TerminalStatusTable) IsTransientFailCode(code string) bool {
	return code == "" || t.transient[code]
}

// LoadTerminalStatusTable reads and indexes a table from a YAML file.
func LoadTerminalStatusTable(path string) (TerminalStatusTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return TerminalStatusTable{}, fmt.Errorf("cannot read terminal status table: %w", err)
	}
	var t TerminalStatusTable
	if err := yaml.Unmarshal(b, &t); err != nil {
		return TerminalStatusTable{}, fmt.Errorf("cannot parse terminal status table: %w", err)
	}
	return MustIndex(t), nil
}
