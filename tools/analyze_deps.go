// Command analyze_deps checks the import graph of the internal packages for
// cycles and for imports that point up the layering.
//
//	go run ./tools/analyze_deps.go
package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "github.com/conneroisu/bfdconf/"

// layers orders the internal packages from the bottom up. A package may only
// import packages from its own layer or below.
var layers = [][]string{
	{"internal/errors", "internal/logging", "internal/version", "internal/testutils"},
	{"internal/validation", "internal/metrics", "internal/keyword"},
	{"internal/bfd"},
	{"internal/track", "internal/role"},
	{"internal/ingest", "internal/config", "internal/watcher"},
}

func main() {
	rank := make(map[string]int)
	for i, layer := range layers {
		for _, pkg := range layer {
			rank[pkg] = i
		}
	}

	deps := make(map[string][]string)
	for pkg := range rank {
		deps[pkg] = analyzePackage(pkg)
	}

	problems := 0

	fmt.Println("=== LAYERING ===")
	for _, pkg := range sortedKeys(deps) {
		for _, imp := range deps[pkg] {
			r, known := rank[imp]
			switch {
			case !known:
				fmt.Printf("UNLISTED: %s imports %s\n", pkg, imp)
				problems++
			case r > rank[pkg]:
				fmt.Printf("UPWARD: %s (layer %d) imports %s (layer %d)\n", pkg, rank[pkg], imp, r)
				problems++
			}
		}
	}

	fmt.Println("\n=== CYCLES ===")
	for _, pkg := range sortedKeys(deps) {
		if cycle := findCycle(deps, pkg, nil, make(map[string]bool)); cycle != nil {
			fmt.Printf("CIRCULAR: %s\n", strings.Join(cycle, " -> "))
			problems++
		}
	}

	if problems > 0 {
		os.Exit(1)
	}
	fmt.Println("\nno problems found")
}

// analyzePackage returns the module-internal packages imported by the
// non-test files of pkgPath.
func analyzePackage(pkgPath string) []string {
	seen := make(map[string]bool)

	files, err := filepath.Glob(filepath.Join(pkgPath, "*.go"))
	if err != nil {
		log.Fatalf("listing %s: %v", pkgPath, err)
	}

	for _, path := range files {
		if strings.HasSuffix(path, "_test.go") {
			continue
		}

		fset := token.NewFileSet()
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			log.Printf("Error analyzing %s: %v", path, err)
			continue
		}

		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, "\"")
			if strings.HasPrefix(importPath, modulePath) {
				seen[strings.TrimPrefix(importPath, modulePath)] = true
			}
		}
	}

	return sortedKeys(seen)
}

// findCycle returns the first import cycle through start, if any.
func findCycle(deps map[string][]string, current string, path []string, visiting map[string]bool) []string {
	if visiting[current] {
		for i, pkg := range path {
			if pkg == current {
				return append(append([]string{}, path[i:]...), current)
			}
		}
		return nil
	}

	visiting[current] = true
	defer delete(visiting, current)

	for _, imp := range deps[current] {
		if cycle := findCycle(deps, imp, append(path, current), visiting); cycle != nil {
			return cycle
		}
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
