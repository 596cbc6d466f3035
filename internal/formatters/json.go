// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"encoding/json"

	"redact-check/internal/audit"
)

// JSONFormatter emits the canonical audit-log schema. When a cleaning
// summary is present it is emitted as a second JSON document, keeping the
// audit object itself schema-exact.
type JSONFormatter struct{}

func init() {
	Register(&JSONFormatter{})
}

// Name returns the name of the formatter
func (f *JSONFormatter) Name() string {
	return "json"
}

// Description returns a brief description of what this formatter outputs
func (f *JSONFormatter) Description() string {
	return "Canonical audit log JSON (schema " + audit.Schema + ")"
}

// FileExtension returns the recommended file extension for this format
func (f *JSONFormatter) FileExtension() string {
	return ".json"
}

// Format renders the audit log as indented JSON.
func (f *JSONFormatter) Format(log *audit.Log, actions *audit.ActionsSummary, options Options) (string, error) {
	out, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", err
	}
	result := string(out) + "\n"

	if actions != nil {
		actionsOut, err := json.MarshalIndent(actions, "", "  ")
		if err != nil {
			return "", err
		}
		result += string(actionsOut) + "\n"
	}
	return result, nil
}
