// Package autoload configures the global logger from the environment as a
// side effect of being imported.
package autoload

import (
	configx "github.com/kermits/telassist/pkg/config"
	logx "github.com/kermits/telassist/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
