package main

import (
	"github.com/planfab/aps-engine/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
