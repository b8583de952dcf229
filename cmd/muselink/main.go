package main

import (
	"MuseLink/internal/config"
	"MuseLink/internal/engine"
	"MuseLink/internal/sdk"
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	itemsPath := flag.String("items", "", "path to the items JSON file")
	outPath := flag.String("out", "", "write results JSON here instead of stdout")
	continueOnFail := flag.Bool("continue-on-fail", false, "record item failures instead of aborting the batch")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer func(logger *zap.Logger) {
		err := logger.Sync()
		if err != nil {
			log.Printf("error syncing logger: %v", err)
		}
	}(logger)

	configLoader := config.NewConfigLoader(logger)
	cfg, err := configLoader.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if *itemsPath == "" {
		logger.Fatal("No items file given, use -items")
	}
	items, err := readItems(*itemsPath)
	if err != nil {
		logger.Fatal("Failed to read items", zap.String("file", *itemsPath), zap.Error(err))
	}

	client, err := sdk.NewClient(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build client", zap.Error(err))
	}

	results, err := client.RunItems(context.Background(), items, *continueOnFail)
	if err != nil {
		logger.Fatal("Batch failed", zap.Error(err))
	}

	if err := writeResults(*outPath, results); err != nil {
		logger.Fatal("Failed to write results", zap.Error(err))
	}

	logger.Info("Batch completed", zap.Int("items", len(results)))
}

func readItems(path string) ([]*engine.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []*engine.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func writeResults(path string, results []*engine.Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0644)
}
