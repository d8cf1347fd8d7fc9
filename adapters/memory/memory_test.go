package memory

import (
	"testing"

	"github.com/proplanet/ecoledger/adapters/storagetest"
	"github.com/proplanet/ecoledger/core"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) core.StorageAdapter {
		return New()
	})
}
