// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/simple-finance/internal/form"
	"github.com/iwvelando/simple-finance/pkg/tvm"
)

// FindResult finds the result for the given unknown in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []form.Result, unknown tvm.Field) *form.Result {
	for i := range results {
		if results[i].Unknown == unknown {
			return &results[i]
		}
	}
	return nil
}
