package main

import (
	"context"
	"os"

	"github.com/dalemusser/formrelay/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		os.Exit(1)
	}
}
