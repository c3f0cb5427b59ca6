package main

import "github.com/eleven-am/auteur/internal/bootstrap"

func main() {
	bootstrap.RunAgent()
}
