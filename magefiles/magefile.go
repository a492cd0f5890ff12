//go:build mage

// Package main contains Mage build targets for shoreline developer tooling.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "shoreline"
	cmdPkg  = "./cmd/shoreline"
)

// Default target when mage runs without arguments.
var Default = Build

// sampleConfig is written by Init when no shoreline.yaml exists.
const sampleConfig = `eutils:
  min_interval: 350ms
  batch_size: 10
cache:
  backend: sqlite
  path: shoreline.db
  max_entries: 50000
rank:
  per_strategy_limit: 10
  cap: 12
llm:
  model: gpt-4o
logging:
  level: info
  format: console
`

// Init creates .secrets/ and a starter shoreline.yaml.
func Init() error {
	if err := os.MkdirAll(".secrets", 0o700); err != nil {
		return fmt.Errorf("creating .secrets: %w", err)
	}
	fmt.Println("   .secrets/ (add ncbi-api-key, ncbi-email, llm-api-key)")

	if _, err := os.Stat("shoreline.yaml"); os.IsNotExist(err) {
		if err := os.WriteFile("shoreline.yaml", []byte(sampleConfig), 0o644); err != nil {
			return fmt.Errorf("writing shoreline.yaml: %w", err)
		}
		fmt.Println("   shoreline.yaml")
	}
	fmt.Println("Project initialized.")
	return nil
}

// Build compiles the CLI binary into bin/, stamping the git version.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs the unit tests with the race detector.
func Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs go vet.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs Lint and Test.
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// skipDir reports directories Stats ignores.
func skipDir(name string) bool {
	return name != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir)
}

// countGoLines walks the tree and counts non-blank lines in Go files,
// split into production and test code.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

// countDocWords counts words in top-level Markdown files.
func countDocWords(root string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(bytes.Fields(data))
	}
	return total, nil
}
