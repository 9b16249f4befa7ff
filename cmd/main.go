package main

import (
	"os"

	"github.com/medeuamangeldi/quiz-maker-api/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
