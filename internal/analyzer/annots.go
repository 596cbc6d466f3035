// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package analyzer

import "strings"

// CountRedactAnnots counts annotations whose subtype is Redact, compared
// case-insensitively after stringification.
func CountRedactAnnots(subtypes []string) int {
	count := 0
	for _, st := range subtypes {
		if strings.EqualFold(st, "Redact") {
			count++
		}
	}
	return count
}
