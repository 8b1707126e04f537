package slim

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/sitediary/sitediary/internal/sheet"
)

const megabyte = 1024 * 1024

// DefaultThresholdMB is the size above which a workbook is worth
// stripping.
const DefaultThresholdMB = 50.0

// FileResult records the outcome for one stripped workbook.
type FileResult struct {
	Path          string
	OriginalMB    float64
	SlimmedMB     float64
	ImagesRemoved int
}

// Result summarizes one slimming run.
type Result struct {
	Files   []FileResult
	SavedMB float64
}

// Run finds every workbook under root larger than thresholdMB and
// rewrites it in place with all embedded pictures removed. Workbooks
// that fail to open or save are logged and skipped.
func Run(root string, thresholdMB float64, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	paths, err := sheet.ListFiles(root)
	if err != nil {
		return nil, fmt.Errorf("listing workbooks: %w", err)
	}

	type candidate struct {
		path string
		mb   float64
	}
	var large []candidate
	for _, path := range paths {
		mb, err := fileSizeMB(path)
		if err != nil {
			logger.Warn("skipping unreadable workbook", "path", path, "error", err)
			continue
		}
		if mb > thresholdMB {
			large = append(large, candidate{path: path, mb: mb})
		}
	}
	sort.Slice(large, func(i, j int) bool { return large[i].mb > large[j].mb })

	result := &Result{}
	for _, c := range large {
		fileResult, err := stripImages(c.path, c.mb)
		if err != nil {
			logger.Warn("failed to slim workbook", "path", c.path, "error", err)
			continue
		}
		logger.Info("slimmed workbook",
			"path", c.path,
			"original_mb", fmt.Sprintf("%.2f", fileResult.OriginalMB),
			"slimmed_mb", fmt.Sprintf("%.2f", fileResult.SlimmedMB),
			"images_removed", fileResult.ImagesRemoved,
		)
		result.Files = append(result.Files, *fileResult)
		result.SavedMB += fileResult.OriginalMB - fileResult.SlimmedMB
	}
	return result, nil
}

func stripImages(path string, originalMB float64) (*FileResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	removed := 0
	for _, name := range f.GetSheetList() {
		cells, err := f.GetPictureCells(name)
		if err != nil {
			return nil, fmt.Errorf("listing pictures on %s: %w", name, err)
		}
		for _, cell := range cells {
			if err := f.DeletePicture(name, cell); err != nil {
				return nil, fmt.Errorf("removing picture at %s!%s: %w", name, cell, err)
			}
			removed++
		}
	}

	if err := f.Save(); err != nil {
		return nil, fmt.Errorf("saving workbook: %w", err)
	}

	slimmedMB, err := fileSizeMB(path)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		Path:          path,
		OriginalMB:    originalMB,
		SlimmedMB:     slimmedMB,
		ImagesRemoved: removed,
	}, nil
}

func fileSizeMB(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("checking size of %s: %w", path, err)
	}
	return float64(info.Size()) / megabyte, nil
}
