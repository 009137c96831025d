//go:build !linux
// +build !linux

package card

import (
	"os"
)

func signals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
