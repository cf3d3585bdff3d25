package main

import (
	"FlowSentry/internal/config"
	"FlowSentry/internal/query"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

func main() {
	mode := flag.String("mode", "api", "Query mode: 'api' to query via HTTP API, 'direct' to query ClickHouse directly.")
	input := flag.String("input", "", "Only show scans of this flow log (optional).")
	since := flag.String("since", "", "Start time in RFC3339 format (optional).")
	limit := flag.Int("limit", 10, "Maximum number of scans to list.")
	apiAddr := flag.String("api", "http://localhost:8080", "Base URL of fs-api.")
	configPath := flag.String("config", "configs/config.yaml", "Config holding the ClickHouse writer, for direct mode.")
	flag.Parse()

	log.Printf("Running in '%s' mode.", *mode)

	switch *mode {
	case "api":
		queryViaAPI(*apiAddr, *input, *since, *limit)
	case "direct":
		directQueryClickHouse(*configPath, *input, *since, *limit)
	default:
		log.Fatalf("Invalid mode: %s. Use 'api' or 'direct'.", *mode)
	}
}

func queryViaAPI(apiAddr, input, since string, limit int) {
	params := url.Values{}
	if input != "" {
		params.Set("input", input)
	}
	if since != "" {
		params.Set("since", since)
	}
	params.Set("limit", strconv.Itoa(limit))

	resp, err := http.Get(apiAddr + "/api/v1/reports?" + params.Encode())
	if err != nil {
		log.Fatalf("Error sending request to API: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Error reading response body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("API returned non-200 status: %s\nBody: %s", resp.Status, string(body))
	}

	fmt.Println(string(body))
}

func directQueryClickHouse(configPath, input, since string, limit int) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var chCfg *config.ClickHouseConfig
	for i := range cfg.Writers {
		if cfg.Writers[i].Type == "clickhouse" {
			chCfg = &cfg.Writers[i].ClickHouse
			break
		}
	}
	if chCfg == nil {
		log.Fatalf("No ClickHouse writer found in %s", configPath)
	}

	querier, err := query.NewClickHouseQuerier(*chCfg)
	if err != nil {
		log.Fatalf("Failed to create querier: %v", err)
	}

	filter := query.ScanFilter{InputPath: input, Limit: limit}
	if since != "" {
		if filter.Since, err = time.Parse(time.RFC3339, since); err != nil {
			log.Fatalf("Invalid since: %v", err)
		}
	}

	rows, err := querier.ListScans(context.Background(), filter)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	fmt.Printf("%-20s %-30s %10s %10s %10s %10s %12s\n", "Timestamp", "Input", "Backdoor", "DoS", "Recon", "Malformed", "Elapsed(ms)")
	for _, r := range rows {
		fmt.Printf("%-20s %-30s %10d %10d %10d %10d %12.1f\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), r.InputPath, r.Backdoor, r.DoS, r.Recon, r.Malformed, r.ElapsedMs)
	}
}
