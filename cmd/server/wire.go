//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"roulette/internal/biz"
	"roulette/internal/biz/chart"
	"roulette/internal/conf"
	"roulette/internal/data"
	"roulette/internal/notify"
	"roulette/internal/server"
	"roulette/internal/service"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Roulette, *conf.Notify, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(server.ProviderSet, data.ProviderSet, biz.ProviderSet, notify.ProviderSet, chart.ProviderSet, service.ProviderSet, newApp))
}
