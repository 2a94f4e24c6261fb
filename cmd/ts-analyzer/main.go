package main

import (
	"fmt"
	"log"
	"os"

	"TrafficScope/internal/config"
	"TrafficScope/internal/pipeline"
)

func main() {
	// 1. Get input file path from command-line arguments
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/ts-analyzer/main.go <path_to_traffic_file> [output_dir]")
		fmt.Println("Accepts a CSV export (columns Time, Length, Source, Destination, Protocol) or a pcap capture.")
		os.Exit(1)
	}
	inputPath := os.Args[1]

	// 2. Load configuration, falling back to defaults when no file exists
	cfg, err := loadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(os.Args) > 2 {
		cfg.Output.RootPath = os.Args[2]
	}
	log.Println("Configuration loaded successfully.")

	// 3. Initialize the pipeline and its configured sinks
	p, err := pipeline.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}
	defer p.Close()

	// 4. Run the analysis
	log.Printf("Analyzing '%s'...", inputPath)
	result, err := p.Run(inputPath)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	// 5. Report the outcome
	log.Printf("Analysis complete: %d records, %d anomalies (%.2f%%)",
		result.Summary.TotalRecords, result.Summary.AnomaliesDetected, result.Summary.AnomalyPercentage)
	log.Printf("Features analyzed: %v", result.FeatureNames)
	log.Printf("Charts written to %s", result.PlotsDir)
	log.Printf("Reports written to %s", result.ReportsDir)
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("No config file at '%s', using defaults.", path)
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}
