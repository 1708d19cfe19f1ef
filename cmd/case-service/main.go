package main

import (
	"log"

	"github.com/forkliftia/case-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
