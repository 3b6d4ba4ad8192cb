package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// FileReader reads a T from the file named by its --file flag, or from
// stdin when the flag is empty. Files ending in .yaml or .yml are decoded
// as YAML, everything else as JSON.
type FileReader[T any] struct {
	fileFlagValue string

	// stdin is swapped in tests.
	stdin io.Reader
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON or YAML file (reads JSON from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

func (fr *FileReader[T]) Read() (T, error) {
	var input T

	if fr.fileFlagValue != "" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if isYAML(fr.fileFlagValue) {
			return decodeYAML[T](f)
		}
		return decodeJSON[T](f)
	}

	if fr.stdin != nil {
		return decodeJSON[T](fr.stdin)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return input, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
	}
	return decodeJSON[T](os.Stdin)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var input T
	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}
	return input, nil
}

func decodeYAML[T any](r io.Reader) (T, error) {
	var input T
	if err := yaml.NewDecoder(r).Decode(&input); err != nil {
		return input, fmt.Errorf("decode YAML: %w", err)
	}
	return input, nil
}
