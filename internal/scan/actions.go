// Package scan implements the termscan scan command: fetch pages, detect
// terms-like content and run the analysis pipeline on what is found.
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/termscan/internal/common"
	"github.com/dtnitsch/termscan/models"
	"github.com/dtnitsch/termscan/pkg/analyzer"
	"github.com/dtnitsch/termscan/pkg/cache"
	"github.com/dtnitsch/termscan/pkg/caching"
	"github.com/dtnitsch/termscan/pkg/detector"
	"github.com/dtnitsch/termscan/pkg/fetcher"
	"github.com/dtnitsch/termscan/pkg/gemini"
	"github.com/dtnitsch/termscan/pkg/langid"
	"github.com/dtnitsch/termscan/pkg/netwatch"
)

// Report is the per-URL scan outcome emitted as JSON.
type Report struct {
	URL          string                 `json:"url"`
	Found        bool                   `json:"found"`
	Location     models.Location        `json:"location"`
	Title        string                 `json:"title,omitempty"`
	SiteName     string                 `json:"site_name,omitempty"`
	Byline       string                 `json:"byline,omitempty"`
	Excerpt      string                 `json:"excerpt,omitempty"`
	Language     string                 `json:"language,omitempty"`
	ContentChars int                    `json:"content_chars,omitempty"`
	Analysis     *models.AnalysisResult `json:"analysis,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

type pipeline struct {
	logger    *slog.Logger
	fetch     *fetcher.Fetcher
	htmlCache *caching.Cache
	analyze   *analyzer.Analyzer
	langFlag  string
	langID    *langid.Detector
}

func ScanAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	urlsStr := c.String("urls")
	if urlsStr == "" {
		return fmt.Errorf("no URLs provided via --urls flag")
	}
	urls, invalid := common.SanitizeAndValidateURLs(strings.Split(urlsStr, ","))
	for _, bad := range invalid {
		logger.Warn("skipping invalid URL", "url", bad)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no valid URLs to scan")
	}

	maxAge, err := time.ParseDuration(c.String("max-age"))
	if err != nil {
		return fmt.Errorf("invalid max-age duration: %w", err)
	}
	if c.Bool("force-fetch") {
		maxAge = 0
	}
	htmlCache, err := caching.NewCache(c.String("cache-dir"), maxAge)
	if err != nil {
		return fmt.Errorf("failed to initialize HTML cache: %w", err)
	}

	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("failed to open result cache: %w", err)
	}
	defer store.Close()

	client := gemini.New(cfg.Gemini.Endpoint, cfg.Gemini.Model, cfg.Gemini.APIKey(), cfg.Gemini.Timeout())

	monitor := netwatch.New(cfg.Network.ProbeURL, true)
	probeCtx, cancel := context.WithTimeout(c.Context, 5*time.Second)
	monitor.Probe(probeCtx)
	cancel()

	language := c.String("lang")
	if language == "" {
		language = cfg.Language
	}

	p := &pipeline{
		logger:    logger,
		fetch:     fetcher.New(30 * time.Second),
		htmlCache: htmlCache,
		analyze:   analyzer.New(client, store, monitor, logger),
		langFlag:  language,
	}

	reports := make([]Report, 0, len(urls))
	foundCount := 0
	for _, pageURL := range urls {
		report := p.scanOne(c.Context, pageURL)
		if report.Found {
			foundCount++
		}
		reports = append(reports, report)
	}

	out, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reports: %w", err)
	}
	fmt.Println(string(out))

	logger.Info("scan complete", "urls", len(urls), "terms_found", foundCount)
	return nil
}

func (p *pipeline) scanOne(ctx context.Context, pageURL string) Report {
	report := Report{URL: pageURL, Location: models.LocationNone}

	body, hit := p.htmlCache.Get(pageURL)
	if hit {
		p.logger.Info("HTML cache hit", "url", pageURL)
	} else {
		var err error
		body, err = p.fetch.Get(ctx, pageURL)
		if err != nil {
			p.logger.Error("fetch failed", "url", pageURL, "error", err)
			report.Error = err.Error()
			return report
		}
		if err := p.htmlCache.Set(pageURL, body); err != nil {
			p.logger.Warn("HTML cache write failed", "url", pageURL, "error", err)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		p.logger.Error("parse failed", "url", pageURL, "error", err)
		report.Error = err.Error()
		return report
	}

	detection := detector.Detect(doc, pageURL)
	report.Found = detection.Found
	report.Location = detection.Location
	report.Title = detection.Title
	if !detection.Found {
		p.logger.Info("no terms content detected", "url", pageURL)
		return report
	}
	report.ContentChars = utf8.RuneCountInString(detection.Content)

	p.enrich(&report, pageURL, string(body))

	report.Language = p.language(detection.Content)

	result, err := p.analyze.Analyze(ctx, pageURL, detection.Content, report.Language)
	if err != nil {
		p.logger.Error("analysis failed", "url", pageURL, "error", err)
		report.Error = err.Error()
		return report
	}
	report.Analysis = &result
	return report
}

// enrich attaches readability metadata to the report. Failures here only
// cost metadata, never the scan.
func (p *pipeline) enrich(report *Report, pageURL, html string) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), parsedURL)
	if err != nil {
		p.logger.Warn("readability enrichment failed", "url", pageURL, "error", err)
		return
	}
	if report.Title == "" {
		report.Title = article.Title
	}
	report.SiteName = article.SiteName
	report.Byline = article.Byline
	report.Excerpt = article.Excerpt
}

// language resolves the report language: an explicit flag wins, otherwise
// the extracted text is classified.
func (p *pipeline) language(content string) string {
	if p.langFlag != "" && p.langFlag != "auto" {
		return p.langFlag
	}
	if p.langID == nil {
		p.langID = langid.New()
	}
	return p.langID.Code(content)
}
