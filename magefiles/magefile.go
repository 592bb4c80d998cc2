// Package main provides build targets for the rowdelta project using Mage.
//
// Usage:
//
//	mage build            Compile the lens binary to bin/
//	mage test             Run all tests (unit + integration)
//	mage testUnit         Run only unit tests (exclude tests/integration)
//	mage testIntegration  Run only the integration tests
//	mage lint             Run golangci-lint
//	mage clean            Remove build artifacts
//	mage install          Install lens to GOPATH/bin

//go:build mage

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "lens"
	binaryDir  = "bin"
	cmdDir     = "./cmd/lens"
)

// Build compiles the lens binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs every test in the module.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// TestUnit runs the package tests, excluding the integration suite.
func TestUnit() error {
	pkgs, err := sh.Output("go", "list", "./...")
	if err != nil {
		return err
	}
	args := []string{"test"}
	for _, pkg := range strings.Fields(pkgs) {
		if !strings.Contains(pkg, "/tests/integration") {
			args = append(args, pkg)
		}
	}
	return sh.RunV("go", args...)
}

// TestIntegration builds the binary first, then runs the integration suite.
func TestIntegration() error {
	mg.Deps(Build)
	return sh.RunV("go", "test", "./tests/integration/...")
}

// Lint runs golangci-lint over the module.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}

// Install installs the lens binary to GOPATH/bin.
func Install() error {
	return sh.RunV("go", "install", cmdDir)
}
