//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/weegigs/steel-plate-go/connectors/gateway"
)

func live() (gateway.Handler, error) {
	panic(wire.Build(Live))
}
