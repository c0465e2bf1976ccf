package main

import (
	"github.com/smallbiznis/labform/internal/app"
	"github.com/smallbiznis/labform/internal/config"
	"go.uber.org/fx"
)

func main() {
	cfg := config.Load()
	fx.New(app.Options(cfg)).Run()
}
