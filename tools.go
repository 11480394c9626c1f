//go:build tools

// Pins mockgen so the //go:generate directives under contract/ and
// infrastructure/storage/ resolve to the version in go.mod.
package dm_lab

import (
	_ "go.uber.org/mock/mockgen"
)
