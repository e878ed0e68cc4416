package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/export"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/service"
	"github.com/FACorreiaa/ribapurify/pkg/money"
)

type scanOptions struct {
	format   string
	out      string
	timezone string
	ribaOnly bool
	verbose  bool
}

type scanner interface {
	ProcessBatch(ctx context.Context, files []model.InputFile) (*model.BatchResult, error)
}

func runScan(ctx context.Context, svc scanner, patterns []string, opts scanOptions, out, errOut io.Writer) error {
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	files, err := loadFiles(patterns)
	if err != nil {
		return err
	}

	res, err := svc.ProcessBatch(ctx, files)
	if err != nil {
		var be *service.BatchError
		if errors.As(err, &be) {
			printOutcomes(errOut, be.Files)
		}
		return err
	}

	printOutcomes(errOut, res.Files)
	if opts.ribaOnly {
		res.Transactions = ribaOnly(res.Transactions)
		res.Summary = model.Summarize(res.Transactions)
	}
	printSummary(errOut, res)

	return export.Write(out, res, format)
}

func loadFiles(patterns []string) ([]model.InputFile, error) {
	var files []model.InputFile
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files found matching pattern %s", pattern)
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil {
				return nil, err
			}
			if info.IsDir() {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			files = append(files, model.InputFile{Name: filepath.Base(path), Data: data})
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no files to scan")
	}
	return files, nil
}

func ribaOnly(txs []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.IsRiba {
			out = append(out, tx)
		}
	}
	return out
}

func printOutcomes(w io.Writer, files []model.FileOutcome) {
	for _, f := range files {
		if f.Success {
			fmt.Fprintf(w, "ok      %s (%d lines)\n", f.FileName, f.Lines)
			continue
		}
		fmt.Fprintf(w, "skipped %s: %s\n", f.FileName, f.Reason)
	}
}

func printSummary(w io.Writer, res *model.BatchResult) {
	s := res.Summary
	fmt.Fprintf(w, "%d transactions, %d riba (%.0f%%), currency %s\n",
		s.TransactionCount, s.RibaCount, s.RibaShare*100, res.Currency)
	for _, c := range model.Currencies {
		totals, ok := s.ByCurrency[c]
		if !ok || totals.Riba.IsZero() {
			continue
		}
		fmt.Fprintf(w, "purify %s\n", money.Format(totals.Riba, string(c)))
	}
}
