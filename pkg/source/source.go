// Package source defines the contract for site providers, the
// black-box collectors the aggregator fans out to.
package source

import (
	"context"

	"github.com/sampa-lab/event_radar/pkg/model"
	"github.com/sampa-lab/event_radar/pkg/normalize"
)

// Provider collects raw records from one site. Fetch applies its own
// timeout, may legitimately return an empty list, and may fail without
// affecting any other provider.
type Provider interface {
	Name() string
	Kind() normalize.SourceKind
	Fetch(ctx context.Context) ([]model.RawEvent, error)
}
