// Package main provides the simon CLI for exploring Simon circle geometry,
// playing highlight sequences and fetching images through the loader.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
