package deals

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"mellow/internal/model"
)

// MaxLineSize bounds a single dataset line.
const MaxLineSize = 64 << 20

// Result summarizes a pipeline run.
type Result struct {
	Scanned  int
	Admitted int
	Skipped  int
}

// Pipeline filters a raw dataset into the served feed.
type Pipeline struct {
	Categories []string
	Logger     *zap.Logger
}

// NewPipeline creates a pipeline admitting the given categories, or
// DefaultCategories when none are given.
func NewPipeline(categories []string, logger *zap.Logger) *Pipeline {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{Categories: categories, Logger: logger.Named("dealsfeed")}
}

// Filter reads src and returns the admitted listings in input order.
func (p *Pipeline) Filter(ctx context.Context, src io.Reader) ([]model.VenueListing, Result, error) {
	var res Result
	listings := make([]model.VenueListing, 0)

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, res, err
			}
		}

		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		res.Scanned++

		var business model.RawBusiness
		if err := json.Unmarshal(raw, &business); err != nil {
			res.Skipped++
			p.Logger.Warn("skipping malformed line", zap.Int("line", line), zap.Error(err))
			continue
		}

		if business.Categories == nil || !Admit(*business.Categories, p.Categories) {
			continue
		}
		listings = append(listings, business.Listing())
		res.Admitted++
	}
	if err := scanner.Err(); err != nil {
		return nil, res, fmt.Errorf("scan dataset at line %d: %w", line+1, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, res, err
	}
	return listings, res, nil
}

// Run filters src and atomically replaces outputPath with the admitted listings
// as an indented JSON array. On error the previous output is left untouched.
func (p *Pipeline) Run(ctx context.Context, src io.Reader, outputPath string) (Result, error) {
	listings, res, err := p.Filter(ctx, src)
	if err != nil {
		return res, err
	}

	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return res, fmt.Errorf("encode listings: %w", err)
	}
	if err := writeFileAtomic(outputPath, data); err != nil {
		return res, err
	}

	p.Logger.Info("feed written",
		zap.String("output", outputPath),
		zap.Int("scanned", res.Scanned),
		zap.Int("admitted", res.Admitted),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
