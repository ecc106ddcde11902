// Package api provides the HTTP surface for reading statuses.
package api

import (
	"go.uber.org/fx"
)

var Module = fx.Module("api",
	fx.Provide(
		newLifecycleServer,
	),
)
