package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// LegacyFileName is the single pre-partitioning data file.
const LegacyFileName = "data.csv"

var yearFilePattern = regexp.MustCompile(`^(\d{4})-data\.csv$`)

// YearFileName returns the partition file name for a year, e.g. "2025-data.csv".
func YearFileName(year int) string {
	return fmt.Sprintf("%04d-data.csv", year)
}

// PathForYear returns the partition file path for a year under baseDir.
func PathForYear(baseDir string, year int) string {
	return filepath.Join(baseDir, YearFileName(year))
}

// PathForDate returns the partition file path for the year of t.
func PathForDate(baseDir string, t time.Time) string {
	return PathForYear(baseDir, t.Year())
}

// LegacyPath returns the path of the legacy single-file layout under baseDir.
func LegacyPath(baseDir string) string {
	return filepath.Join(baseDir, LegacyFileName)
}

// AvailableYears lists the years that have a partition file under baseDir,
// sorted ascending. Years come from the file names, not the file contents.
// A missing base directory means no data, not an error.
func AvailableYears(baseDir string) ([]int, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", baseDir, err)
	}

	var years []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := yearFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		years = append(years, year)
	}
	sort.Ints(years)
	return years, nil
}
