package main

import (
	"procurement-marketplace-api/app"

	_ "github.com/lib/pq"
)

func main() {
	app.Run()
}
