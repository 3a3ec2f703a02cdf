package lineitem

import (
	"github.com/smallbiznis/marketplace/internal/lineitem/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lineitem.service",
	fx.Provide(service.NewService),
)
