package main

import (
	"FlowSentry/internal/config"
	"FlowSentry/internal/engine/manager"
	"FlowSentry/internal/report"
	"FlowSentry/pkg/flowlog"
	"FlowSentry/pkg/pcap"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

func main() {
	input := flag.String("r", "", "pcap file to read (required)")
	output := flag.String("o", "", "flow log to write (default: stdout)")
	scan := flag.Bool("scan", false, "Scan the converted flows and print the report")
	configPath := flag.String("config", "", "YAML configuration used with -scan")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: -r flag is required.")
		flag.Usage()
		os.Exit(1)
	}

	pcapReader, err := pcap.NewReader(*input)
	if err != nil {
		log.Fatalf("Failed to open pcap file: %v", err)
	}
	defer pcapReader.Close()
	log.Printf("Reading packets from '%s'...", *input)

	packets := make(chan *pcap.Packet, 1024)
	go pcapReader.ReadPackets(packets)

	agg := pcap.NewAggregator()
	for p := range packets {
		agg.Add(p)
	}
	log.Printf("Aggregated %d flows.", agg.Len())

	var buf bytes.Buffer
	if err := agg.WriteCSV(&buf); err != nil {
		log.Fatalf("Failed to encode flows: %v", err)
	}

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}
	// With -scan and no -o, stdout carries only the report.
	if !*scan || *output != "" {
		if _, err := out.Write(buf.Bytes()); err != nil {
			log.Fatalf("Failed to write flows: %v", err)
		}
	}

	if !*scan {
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	m, err := manager.NewManager(cfg)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}
	defer m.Close()

	r, err := m.Run(context.Background(), flowlog.NewMemory(buf.Bytes()), *input)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}
	if err := report.WriteText(os.Stdout, r); err != nil {
		log.Printf("ERROR: failed to print report: %v", err)
	}
	if err := m.Dispatch(context.Background(), r); err != nil {
		log.Printf("Warning: report delivery incomplete: %v", err)
	}
}
