// Package main provides a command-line tool for inspecting and extracting
// ZIP archives.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"zipread/pkg/zipfile"
)

var (
	mode           string
	archivePath    string
	outputDir      string
	entryName      string
	forceOverwrite bool
)

func init() {
	flag.StringVar(&mode, "mode", "", "Operation mode: list, extract, test")
	flag.StringVar(&archivePath, "archive", "", "Path to the ZIP archive")
	flag.StringVar(&outputDir, "output", "", "Output directory for extract mode")
	flag.StringVar(&entryName, "name", "", "Extract only the named entry")
	flag.BoolVar(&forceOverwrite, "force", false, "Allow non-empty output directory")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := validateFlags(); err != nil {
		flag.Usage()
		return err
	}

	r, err := zipfile.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	switch mode {
	case "list":
		return runList(&r.Reader)
	case "extract":
		return runExtract(&r.Reader)
	case "test":
		return runTest(&r.Reader)
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
}

func validateFlags() error {
	if mode == "" {
		return fmt.Errorf("mode is required")
	}
	if archivePath == "" {
		return fmt.Errorf("archive path is required")
	}

	switch mode {
	case "list", "test":
	case "extract":
		if outputDir == "" {
			return fmt.Errorf("extract mode requires -output")
		}
	default:
		return fmt.Errorf("mode must be 'list', 'extract' or 'test'")
	}

	return nil
}

func runList(r *zipfile.Reader) error {
	entries, err := r.Files()
	if err != nil {
		return fmt.Errorf("read central directory: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "Size\tPacked\tMethod\tModified\tName")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
			e.UncompressedSize, e.CompressedSize, e.Method,
			e.Modified.Time().Format("2006-01-02 15:04"), e.Name)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("%d entries\n", len(entries))
	if c := r.Comment(); c != "" {
		fmt.Printf("Archive comment: %s\n", c)
	}
	return nil
}

func runExtract(r *zipfile.Reader) error {
	if err := prepareOutputDir(); err != nil {
		return err
	}

	if entryName != "" {
		e, err := r.Lookup(entryName)
		if err != nil {
			return err
		}
		if err := extractEntry(r, e); err != nil {
			return err
		}
		fmt.Printf("Extraction complete. 1 entry written to %s\n", outputDir)
		return nil
	}

	entries, err := r.Files()
	if err != nil {
		return fmt.Errorf("read central directory: %w", err)
	}
	for _, e := range entries {
		if err := extractEntry(r, e); err != nil {
			return err
		}
	}

	fmt.Printf("Extraction complete. %d entries written to %s\n", len(entries), outputDir)
	return nil
}

func runTest(r *zipfile.Reader) error {
	entries, err := r.Files()
	if err != nil {
		return fmt.Errorf("read central directory: %w", err)
	}

	verified := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := r.ReadFile(e); err != nil {
			return fmt.Errorf("verify %s: %w", e.Name, err)
		}
		verified++
	}

	fmt.Printf("OK. %d entries verified\n", verified)
	return nil
}

func extractEntry(r *zipfile.Reader, e zipfile.Entry) error {
	path, err := entryPath(e.Name)
	if err != nil {
		return err
	}

	if e.IsDir() {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("create dir %s: %w", path, err)
		}
		return nil
	}

	data, err := r.ReadFile(e)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write file %s: %w", path, err)
	}
	return nil
}

// entryPath maps an archive entry name onto the output directory,
// rejecting absolute names and parent traversal.
func entryPath(name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry name escapes output directory: %s", name)
	}
	return filepath.Join(outputDir, cleaned), nil
}

func prepareOutputDir() error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if !forceOverwrite {
		empty, err := isDirEmpty(outputDir)
		if err != nil {
			return fmt.Errorf("check output directory: %w", err)
		}
		if !empty {
			return fmt.Errorf("output directory is not empty (use -force to override)")
		}
	}

	return nil
}

func isDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdir(1)
	return err == io.EOF, nil
}
