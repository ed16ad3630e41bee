package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/linguedo/strike-engine/engine"
)

// DirSource discovers exports under Root, one folder per day named
// DD-MM-YYYY, each possibly containing a file called FileName.
type DirSource struct {
	Root     string
	FileName string
}

// Files returns exports strictly newer than after, ascending by date.
// Folders with unparseable names or without the export file are skipped.
func (s *DirSource) Files(_ context.Context, after engine.Date) ([]DatedFile, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, err
	}

	var files []DatedFile
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		date := ParseFolderDate(entry.Name())
		if date.IsZero() {
			continue
		}
		if !after.IsZero() && !date.After(after) {
			continue
		}

		path := filepath.Join(s.Root, entry.Name(), s.FileName)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		files = append(files, DatedFile{
			Date: date,
			Name: path,
			Text: func() (string, error) {
				data, err := os.ReadFile(path)
				return string(data), err
			},
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Date.Before(files[j].Date) })
	return files, nil
}

// ParseFolderDate parses a DD-MM-YYYY folder name. Returns the zero Date on
// any malformation.
func ParseFolderDate(name string) engine.Date {
	parts := strings.Split(name, "-")
	if len(parts) != 3 {
		return engine.Date{}
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return engine.Date{}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return engine.Date{}
	}
	return engine.NewDate(year, time.Month(month), day)
}
