// Command hirelens runs the HireLens API and call signaling server.
//
//	hirelens [serve]
//	hirelens migrate [up | down [steps] | version]
//
// @title HireLens API
// @version 1.0
// @description Interview booking and call signaling.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"os"

	_ "hirelens/docs"
	"hirelens/internal/app"
)

func main() {
	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "hirelens:", err)
		os.Exit(1)
	}
}
