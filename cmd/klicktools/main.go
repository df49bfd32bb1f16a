// Command klicktools runs the KlickTools directory service.
package main

import (
	"context"

	"github.com/dalemusser/waffle/app"
	"github.com/klicktools/klicktools/internal/app/bootstrap"
)

func main() {
	app.Run(context.Background(), bootstrap.Hooks)
}
