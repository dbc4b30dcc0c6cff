// Command batch evaluates every image in a directory against the rubric and
// writes the collected results to evaluations.json.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fotocheck/fotocheck/internal/config"
	"github.com/fotocheck/fotocheck/internal/gateway"
	"github.com/fotocheck/fotocheck/internal/workflow"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
	".gif":  true,
}

type entry struct {
	Filename       string         `json:"filename"`
	Success        bool           `json:"success"`
	OverallScore   *int           `json:"overall_score"`
	CriteriaScores map[string]int `json:"criteria_scores"`
	Safe           *bool          `json:"safe"`
	Notes          string         `json:"notes"`
}

func main() {
	var (
		dir         = flag.String("dir", ".assets", "Directory containing images to evaluate")
		prompt      = flag.String("prompt", "", "Evaluation prompt (defaults to the configured rubric prompt)")
		out         = flag.String("out", "", "Output file (defaults to evaluations.json under -dir)")
		concurrency = flag.Int("concurrency", 2, "Maximum concurrent evaluations")
	)
	flag.Parse()

	gatewayConfig, rubricConfig, err := config.LoadWorkflow()
	if err != nil {
		log.Fatal("config load failed:", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	gw, err := gateway.New(gatewayConfig, logger)
	if err != nil {
		log.Fatal("gateway init failed:", err)
	}

	runtime := workflow.NewRuntime(gw, gatewayConfig, rubricConfig, logger)

	images, err := listImages(*dir)
	if err != nil {
		log.Fatal(err)
	}
	if len(images) == 0 {
		fmt.Printf("no images found in %s\n", *dir)
		return
	}

	entries, failures := evaluateAll(context.Background(), runtime, images, *prompt, *concurrency)

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(*dir, "evaluations.json")
	}

	if err := writeEntries(outPath, entries); err != nil {
		log.Fatal("write results failed:", err)
	}

	fmt.Printf("saved %d evaluations to %s\n", len(entries), outPath)
	if failures > 0 {
		os.Exit(1)
	}
}

func listImages(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var images []string
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(f.Name()))] {
			images = append(images, filepath.Join(dir, f.Name()))
		}
	}
	return images, nil
}

func evaluateAll(
	ctx context.Context,
	runtime *workflow.Runtime,
	images []string,
	prompt string,
	concurrency int,
) ([]entry, int) {
	var (
		mu       sync.Mutex
		entries  []entry
		failures int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, path := range images {
		g.Go(func() error {
			e := evaluateOne(ctx, runtime, path, prompt)

			mu.Lock()
			if !e.Success {
				failures++
			}
			entries = append(entries, e)
			mu.Unlock()
			return nil
		})
	}

	g.Wait()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Filename < entries[j].Filename
	})
	return entries, failures
}

func evaluateOne(
	ctx context.Context,
	runtime *workflow.Runtime,
	path string,
	prompt string,
) entry {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("%s: ERROR: %v\n", name, err)
		return entry{Filename: name, Notes: err.Error(), CriteriaScores: map[string]int{}}
	}

	result, err := workflow.Evaluate(ctx, runtime, name, data, prompt)
	if err != nil {
		fmt.Printf("%s: ERROR: %v\n", name, err)
		return entry{Filename: name, Notes: err.Error(), CriteriaScores: map[string]int{}}
	}

	preview := result.Notes
	if len(preview) > 120 {
		preview = preview[:120]
	}
	fmt.Printf("%s: score=%d, safe=%t, notes=%s\n", name, result.OverallScore, result.Safe, preview)

	return entry{
		Filename:       name,
		Success:        true,
		OverallScore:   &result.OverallScore,
		CriteriaScores: result.CriteriaScores,
		Safe:           &result.Safe,
		Notes:          result.Notes,
	}
}

func writeEntries(path string, entries []entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
