package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
)

var services = []string{"http", "smtp", "dns", "ftp", "ssh", "telnet", "other"}

func main() {
	outputFile := flag.String("o", "network_logs.csv", "Output flow log path")
	lineCount := flag.Int("c", 100000, "Number of background flow lines to generate")
	hosts := flag.Int("hosts", 500, "Number of distinct background source IPs")
	attackers := flag.Int("attackers", 3, "Number of sources of each attack kind to inject")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	rng := rand.New(rand.NewSource(*seed))

	log.Printf("Generating %d lines into %s...", *lineCount, *outputFile)

	for i := 0; i < *lineCount; i++ {
		h := rng.Intn(*hosts)
		src := fmt.Sprintf("10.0.%d.%d", h/250, h%250+1)
		dstPort := []int{25, 53, 80, 21, 443}[rng.Intn(5)]
		writeLine(w, rng, src, dstPort, int64(rng.Intn(5000)), services[rng.Intn(4)])
	}

	for a := 0; a < *attackers; a++ {
		// Backdoor: a non-standard service on one high port.
		for i := 0; i < 60; i++ {
			writeLine(w, rng, fmt.Sprintf("172.16.0.%d", a+1), 31337, 200, "telnet")
		}
		// DoS: oversized transfers.
		for i := 0; i < 10; i++ {
			writeLine(w, rng, fmt.Sprintf("172.16.1.%d", a+1), 80, 250000, "http")
		}
		// Reconnaissance: a sweep over low ports.
		for port := 1; port <= 30; port++ {
			writeLine(w, rng, fmt.Sprintf("172.16.2.%d", a+1), port, 60, "other")
		}
	}

	if err := w.Flush(); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	log.Printf("Successfully generated flow log %s.", *outputFile)
}

func writeLine(w *bufio.Writer, rng *rand.Rand, src string, dstPort int, srcBytes int64, service string) {
	fmt.Fprintf(w, "%s,%d,192.168.%d.%d,%d,tcp,SF,%.3f,%d,%d,%d,%d,%d,%d,%s\n",
		src, rng.Intn(64511)+1024, rng.Intn(256), rng.Intn(254)+1, dstPort,
		rng.Float64()*10, srcBytes, rng.Intn(5000),
		rng.Intn(20)+1, rng.Intn(20)+1, rng.Intn(20)+1, rng.Intn(20)+1, service)
}
