// Gallery page builder: regenerates static gallery pages from scraped HTML.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"malayalees/src/infra/config"
	"malayalees/src/infra/gallery"
	"malayalees/src/infra/logger"
)

func main() {
	var (
		inDir    = flag.String("in", "scraped", "Directory holding scraped .html files")
		outDir   = flag.String("out", "public/gallery", "Directory the gallery pages are written to")
		baseURL  = flag.String("base", "", "Site URL used to resolve relative image paths")
		title    = flag.String("title", "Photo Gallery", "Title of the index page")
		logLevel = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	if err := run(*inDir, *outDir, *baseURL, *title, *logLevel); err != nil {
		log.Printf("gallerybuild: %v", err)
		os.Exit(1)
	}
}

func run(inDir, outDir, baseURL, title, logLevel string) error {
	lg := logger.New(config.LogConfig{Level: logLevel, Format: "plain"})

	var base *url.URL
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid -base: %w", err)
		}
		base = u
	}

	files, err := filepath.Glob(filepath.Join(inDir, "*.html"))
	if err != nil {
		return err
	}
	sort.Strings(files)
	if len(files) == 0 {
		return fmt.Errorf("no .html files in %s", inDir)
	}

	pages := make([]*gallery.Page, 0, len(files))
	for _, path := range files {
		page, err := scrapeFile(path, base)
		if err != nil {
			lg.Warn("skipping unreadable page", "file", path, "error", err)
			continue
		}
		pages = append(pages, page)
	}

	b := &gallery.Builder{OutDir: outDir, IndexTitle: title, Log: lg}
	written, err := b.Build(pages)
	if err != nil {
		return err
	}
	lg.Info("gallery build finished", "sources", len(files), "files_written", len(written))
	return nil
}

func scrapeFile(path string, base *url.URL) (*gallery.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	page, err := gallery.Scrape(f, base)
	if err != nil {
		return nil, err
	}
	page.Source = path
	if page.Slug == "" {
		name := filepath.Base(path)
		page.Slug = gallery.Slugify(name[:len(name)-len(filepath.Ext(name))])
	}
	return page, nil
}
