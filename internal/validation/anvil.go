package validation

import (
	"context"

	"github.com/connect-labs/ccli/internal/extension"
	"go.uber.org/zap"
)

// CheckAnvil only notes whether an anvil class is declared.
func CheckAnvil(_ context.Context, cfg Config, _ string, vctx Context) Result {
	if cls, ok := vctx.Classes.Get(extension.KindAnvil); ok {
		cfg.logger().Debug("anvil extension declared", zap.String("class", cls.Name()))
	}
	return Result{}
}
