package report

import (
	"bufio"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/file-processing-engine/internal/sales"
	"github.com/spf13/afero"
)

// Entry is a report read back from the destination directory.
type Entry struct {
	// File is the report file name.
	File string

	Summary sales.Summary
}

// Parse reads report text produced by Render.
func Parse(text string) (sales.Summary, error) {
	var s sales.Summary
	seen := 0

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, clientsLabel):
			n, err := strconv.Atoi(strings.TrimPrefix(line, clientsLabel))
			if err != nil {
				return s, fmt.Errorf("client count: %w", err)
			}
			s.ClientCount = n
			seen++
		case strings.HasPrefix(line, sellersLabel):
			n, err := strconv.Atoi(strings.TrimPrefix(line, sellersLabel))
			if err != nil {
				return s, fmt.Errorf("seller count: %w", err)
			}
			s.SellerCount = n
			seen++
		case strings.HasPrefix(line, topSaleLabel):
			s.TopSaleID = strings.TrimPrefix(line, topSaleLabel)
			seen++
		case strings.HasPrefix(line, leastLabel):
			s.LeastActiveSeller = strings.TrimPrefix(line, leastLabel)
			seen++
		}
	}
	if err := sc.Err(); err != nil {
		return s, err
	}
	if seen != 4 {
		return s, fmt.Errorf("report has %d of 4 lines", seen)
	}

	// A real sale id or seller could be literally "none"; the sentinel is
	// only assumed when both are "none".
	if s.TopSaleID == None && s.LeastActiveSeller == None {
		s.TopSaleID, s.LeastActiveSeller = "", ""
	} else {
		s.HasSales = true
	}

	return s, nil
}

// Load reads every report in dir, sorted by file name.
// Files that do not parse are returned in skipped rather than failing the load.
func Load(fs afero.Fs, dir, extension string) (entries []Entry, skipped []string, err error) {
	if extension == "" {
		extension = ".txt"
	}
	suffix := DoneMarker + extension

	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", dir, err)
	}

	for _, info := range infos {
		if !info.Mode().IsRegular() || !strings.HasSuffix(info.Name(), suffix) {
			continue
		}

		data, err := afero.ReadFile(fs, filepath.Join(dir, info.Name()))
		if err != nil {
			skipped = append(skipped, info.Name())
			continue
		}

		s, err := Parse(string(data))
		if err != nil {
			skipped = append(skipped, info.Name())
			continue
		}
		entries = append(entries, Entry{File: info.Name(), Summary: s})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].File < entries[j].File })
	return entries, skipped, nil
}
