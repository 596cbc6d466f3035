// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import "fmt"

// Build information. Populated at build time via -ldflags.
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// String returns the full version string for display
func String() string {
	return fmt.Sprintf("redact-check %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
