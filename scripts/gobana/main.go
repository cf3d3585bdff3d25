package main

import (
	"FlowSentry/internal/model"
	"FlowSentry/internal/report"
	"encoding/gob"
	"fmt"
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/gobana/main.go <report.gob>")
		os.Exit(1)
	}
	gobFile := os.Args[1]

	file, err := os.Open(gobFile)
	if err != nil {
		log.Fatalf("Unable to open file: %v", err)
	}
	defer file.Close()

	var r model.Report
	if err := gob.NewDecoder(file).Decode(&r); err != nil {
		log.Fatalf("Failed to decode gob data: %v", err)
	}

	fmt.Print(report.Markdown(&r))
}
