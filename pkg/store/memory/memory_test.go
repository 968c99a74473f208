package memory_test

import (
	"testing"

	"github.com/dmitrymomot/studiodesk/pkg/store"
	"github.com/dmitrymomot/studiodesk/pkg/store/memory"
	"github.com/dmitrymomot/studiodesk/pkg/store/storetest"
)

func TestStore(t *testing.T) {
	t.Parallel()

	storetest.Run(t, func(t *testing.T) store.Store {
		return memory.New()
	})
}
