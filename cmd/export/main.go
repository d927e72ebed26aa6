package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"ssactivewear-mcp/internal/config"
	productsvc "ssactivewear-mcp/internal/service/product"
	"ssactivewear-mcp/internal/ssapi"
)

func main() {
	var (
		format           string
		outPath          string
		envFile          string
		includeInventory bool
	)
	flag.StringVar(&format, "format", productsvc.FormatCSV, "Export format: csv, json or xml")
	flag.StringVar(&outPath, "out", "", "Output file (default: stdout)")
	flag.StringVar(&envFile, "env-file", ".env", "Path to a .env file (ignored when absent)")
	flag.BoolVar(&includeInventory, "inventory", true, "Include warehouse inventory columns")
	flag.Parse()

	cfg, err := config.Load(envFile, "")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if missing := cfg.Missing(); len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v", missing)
	}
	logger, err := config.NewLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	svc := productsvc.New(ssapi.New(cfg.APIOptions(), logger), productsvc.Options{PreferredWarehouses: cfg.PreferredWarehouses}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+5*time.Second)
	defer cancel()

	start := time.Now()
	out, err := svc.Export(ctx, productsvc.ExportInput{Format: format, IncludeInventory: includeInventory})
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}

	if outPath == "" {
		fmt.Println(out.Body)
		return
	}
	if err := os.WriteFile(outPath, []byte(out.Body+"\n"), 0o644); err != nil {
		log.Fatalf("write %s: %v", outPath, err)
	}
	fmt.Fprintf(os.Stderr, "Exported %s (%d bytes) to %s in %s\n", out.Format, len(out.Body), outPath, time.Since(start).Truncate(time.Millisecond))
}
