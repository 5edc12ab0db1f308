package processor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// OutputSuffix is appended to the input stem to name outputs.
	OutputSuffix = "_kizuato"
	// DefaultOutputDir is created inside an input directory when no output
	// directory is given.
	DefaultOutputDir = "oniazusa_out"
)

// ErrNoInputs is returned when a directory holds no supported images.
var ErrNoInputs = errors.New("no image files found")

var supportedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
	".gif":  true,
}

// Resolve turns a file or directory path into WorkItems.
//
// A file maps to "<stem>_kizuato.png" next to it, or to output when given.
// A directory is scanned non-recursively for supported extensions; outputs
// go to output (default "<dir>/oniazusa_out") and items are sorted by
// file name. Sources sharing a stem get distinct destinations. The boolean
// result reports directory mode.
func Resolve(input, output string) ([]WorkItem, bool, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, false, err
	}

	if !info.IsDir() {
		dest := output
		if dest == "" {
			dest = filepath.Join(filepath.Dir(input), outputName(input))
		} else if st, err := os.Stat(dest); err == nil && st.IsDir() {
			dest = filepath.Join(dest, outputName(input))
		}
		return []WorkItem{{
			Source:      input,
			Destination: dest,
			Display:     filepath.Base(input),
		}}, false, nil
	}

	outDir := output
	if outDir == "" {
		outDir = filepath.Join(input, DefaultOutputDir)
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, true, err
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if supportedExt[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, true, fmt.Errorf("%w in %s", ErrNoInputs, input)
	}
	sort.Strings(names)

	dests := outputNames(names)
	items := make([]WorkItem, 0, len(names))
	for i, name := range names {
		items = append(items, WorkItem{
			Source:      filepath.Join(input, name),
			Destination: filepath.Join(outDir, dests[i]),
			Display:     name,
		})
	}
	return items, true, nil
}

func outputName(path string) string {
	return stemOf(path) + OutputSuffix + ".png"
}

// outputNames maps directory entries to output names that never collide,
// even on case-insensitive filesystems. Entries sharing a stem ("a.jpg",
// "a.png") keep their extension in the name: "a_jpg_kizuato.png".
func outputNames(names []string) []string {
	stems := make(map[string]int, len(names))
	for _, name := range names {
		stems[strings.ToLower(stemOf(name))]++
	}

	used := make(map[string]bool, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		stem := stemOf(name)
		if stems[strings.ToLower(stem)] > 1 {
			stem += "_" + strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		}
		candidate := stem
		for n := 2; used[strings.ToLower(candidate)]; n++ {
			candidate = fmt.Sprintf("%s_%d", stem, n)
		}
		used[strings.ToLower(candidate)] = true
		out[i] = candidate + OutputSuffix + ".png"
	}
	return out
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
