package main

import (
	"os"

	"horse.fit/topicsearch/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
