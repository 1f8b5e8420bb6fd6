//go:build tools
// +build tools

// Package tools pins the code generators invoked via go generate (mockgen)
// so go.mod and go.sum keep tracking them.
package birdsong_lab

import (
	_ "go.uber.org/mock/mockgen"
)
