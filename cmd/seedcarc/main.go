// Command seedcarc loads the claim adjustment reason code (CARC) reference
// table from a spreadsheet. Expects two columns: code, description.
// Usage: go run ./cmd/seedcarc -file carc_codes.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"

	"claimsight/internal/config"
	"claimsight/internal/domain"
	"claimsight/internal/repository/postgres"
)

const batchSize = 500

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := flag.String("file", "carc_codes.xlsx", "spreadsheet with code and description columns")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	codes, err := readCodes(*xlsxPath)
	if err != nil {
		return err
	}
	log.Printf("parsed %d CARC codes from %s", len(codes), *xlsxPath)

	carcRepo := postgres.NewCARCRepo(db)
	ctx := context.Background()

	for start := 0; start < len(codes); start += batchSize {
		end := start + batchSize
		if end > len(codes) {
			end = len(codes)
		}
		if err := carcRepo.UpsertBatch(ctx, codes[start:end]); err != nil {
			return fmt.Errorf("upserting batch at %d: %w", start, err)
		}
	}

	log.Printf("seeded %d CARC codes", len(codes))
	return nil
}

func readCodes(path string) ([]domain.CARCCode, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	seen := make(map[string]bool)
	var codes []domain.CARCCode
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			// header or short row
			continue
		}
		code := strings.TrimSpace(row[0])
		desc := strings.TrimSpace(row[1])
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, domain.CARCCode{Code: code, Description: desc})
	}

	if len(codes) == 0 {
		return nil, fmt.Errorf("no codes found in %s", path)
	}
	return codes, nil
}
