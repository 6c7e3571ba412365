package observability

import (
	"time"

	"github.com/matzehuels/flightdeck/pkg/panel/layout"
)

// LayoutObserver returns a layout.Observer that forwards engine events
// to the registered layout hooks. Attach it at engine construction:
//
//	engine := layout.New(cfg, layout.WithObserver(observability.LayoutObserver()))
func LayoutObserver() layout.Observer {
	return hookObserver{}
}

type hookObserver struct{}

func (hookObserver) LayoutComputed(strategy layout.Strategy, items int, aligned bool, elapsed time.Duration) {
	Layout().OnLayoutComputed(string(strategy), items, aligned, elapsed)
}
