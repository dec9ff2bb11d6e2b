package main

import (
	"log"
)

// Build informations injected with -ldflags "-X main.GitCommit=...".
var (
	GitCommit string
	GitTag    string
	BuildTime string
)

// @title        Library loans API
// @version      1.0
// @description  Books inventory, loans approval workflow, bookmarks and ratings.
// @BasePath     /
func main() {
	app, err := NewApp()
	if err != nil {
		log.Fatal("library api failed to initialize: ", err)
	}
	if err = app.Run(); err != nil {
		log.Fatal("library api exited. check logs for more details: ", err)
	}
}
