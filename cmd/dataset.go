package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tseval/tseval/eval"
)

// ReadDataset parses a UCR-style series file: one series per line, the
// class label first, then the y values, separated by commas, tabs or
// spaces. x coordinates are the implicit sample indices 0..n-1. Blank
// lines and #-comments are skipped.
func ReadDataset(path string) (*eval.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	dataset := eval.NewDataset()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == '\t' || r == ' '
		})
		if len(fields) < 2 {
			return nil, fmt.Errorf("dataset %s line %d: need a label and at least one value", path, lineNo)
		}
		label, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("dataset %s line %d: bad label %q: %w", path, lineNo, fields[0], err)
		}
		ys := make([]float64, 0, len(fields)-1)
		for _, field := range fields[1:] {
			y, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("dataset %s line %d: bad value %q: %w", path, lineNo, field, err)
			}
			ys = append(ys, y)
		}
		series := eval.NewTimeSeriesOf(label, ys...)
		series.Index = dataset.Len()
		dataset.Append(series)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	if dataset.Len() == 0 {
		return nil, eval.ErrEmptyDataset
	}
	return dataset, nil
}
