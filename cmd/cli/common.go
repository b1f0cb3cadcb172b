package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"spv-projection/internal/config"
	"spv-projection/internal/logging"
	"spv-projection/internal/report"
	"spv-projection/internal/scenario"
	"spv-projection/internal/store"
)

func newLogger() *zap.Logger {
	svc := config.LoadService()
	l, err := logging.New(svc.Env, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return zap.NewNop()
	}
	return l
}

// loadFile reads a config file, or starts from an empty one (all defaults)
// when path is empty. stress is a comma-separated list of preset ids.
func loadFile(path, stress string) (*config.File, error) {
	f := &config.File{}
	if path != "" {
		var err error
		if f, err = config.LoadUnchecked(path); err != nil {
			return nil, err
		}
	}
	for _, id := range splitList(stress) {
		f.StressTests = append(f.StressTests, scenario.Apply{ID: id})
	}
	return f, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// printMarkdown renders md for the terminal when stdout is one, else prints
// it raw.
func printMarkdown(md string) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		fmt.Print(md)
		return
	}
	width := 100
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = w
	}
	out, err := report.Terminal(md, width)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func readPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("store is encrypted: set SPV_STORE_PASSPHRASE")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// withStore opens the scenario store and runs fn. The passphrase comes from
// SPV_STORE_PASSPHRASE; when it is unset the user is prompted if encrypt is
// requested or a named scenario is only found among encrypted files.
func withStore(dir string, encrypt bool, fn func(*store.Store) error) error {
	svc := config.LoadService()
	if dir == "" {
		dir = svc.StoreDir
	}
	pass := svc.StorePassphrase
	if pass == "" && encrypt {
		p, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		pass = p
	}
	st, err := store.Open(dir, store.WithPassphrase(pass))
	if err != nil {
		return err
	}
	err = fn(st)
	if !errors.Is(err, store.ErrLocked) || pass != "" {
		return err
	}
	if pass, err = readPassphrase("Passphrase: "); err != nil {
		return err
	}
	if st, err = store.Open(dir, store.WithPassphrase(pass)); err != nil {
		return err
	}
	return fn(st)
}
