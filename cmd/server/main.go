package main

import (
	_ "github.com/eleven-am/auteur/docs"
	"github.com/eleven-am/auteur/internal/bootstrap"
)

// @title Auteur Vision API
// @version 1.0.0
// @description Camera analysis pipeline: session control, frame ingest, overlay geometry, insight archive and room hub

// @BasePath /

func main() {
	bootstrap.Run()
}
