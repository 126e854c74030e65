package main

import "shopcore/internal/app"

func main() {
	app.RunWorker()
}
