// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wdfake serves the simulated WebDriver remote end of package wdtest,
// for trying clients without a browser.
//
//	wdfake -port 4444 -pages ./testdata -browser chrome
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/phayes/freeport"

	"github.com/fedesog/webdriver/v2/wdtest"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "wdfake:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fset := flag.NewFlagSet("wdfake", flag.ContinueOnError)
	port := fset.Int("port", 4444, "port to listen on; 0 picks a free one")
	pages := fset.String("pages", "", "directory of .html files to serve as pages")
	browser := fset.String("browser", "", "browserName reported for new sessions")
	verbose := fset.Bool("v", false, "log every request")
	if err := fset.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("service", "wdfake")

	if *port == 0 {
		p, err := freeport.GetFreePort()
		if err != nil {
			return fmt.Errorf("picking a port: %w", err)
		}
		*port = p
	}

	opts := []wdtest.Option{wdtest.WithLogger(logger)}
	if *browser != "" {
		opts = append(opts, wdtest.WithCapabilities(map[string]any{"browserName": *browser}))
	}
	srv := wdtest.New(opts...)
	if *pages != "" {
		n, err := addPages(srv, *pages)
		if err != nil {
			return err
		}
		logger.Info("pages loaded", "dir", *pages, "count", n)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hs := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", *port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	if err := probePort(*port, 5*time.Second, errc); err != nil {
		return err
	}
	logger.Info("listening", "url", "http://"+hs.Addr)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}

// addPages registers every .html file under dir, at its path relative to
// dir.
func addPages(srv *wdtest.Server, dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		srv.AddPage("/"+filepath.ToSlash(rel), string(data))
		n++
		return nil
	})
	return n, err
}
