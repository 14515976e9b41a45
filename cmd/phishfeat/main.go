package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"phishing-detector/features"
	"phishing-detector/verdict"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

type options struct {
	url        string
	timeout    time.Duration
	jsonOut    bool
	patterns   string
	classifier string
	quiet      bool
}

func main() {
	_ = godotenv.Load()

	opts := parseFlags()
	if !opts.jsonOut && !opts.quiet {
		printBanner()
	}
	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "[-] Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.url, "u", "", "Target URL")
	flag.DurationVar(&opts.timeout, "timeout", 15*time.Second, "Overall extraction deadline")
	flag.BoolVar(&opts.jsonOut, "json", false, "Print the report as JSON")
	flag.StringVar(&opts.patterns, "patterns", os.Getenv("PATTERNS_FILE"), "YAML file with shortener and blocklist patterns")
	flag.StringVar(&opts.classifier, "classifier", os.Getenv("CLASSIFIER_URL"), "Model server URL; prints a verdict when set")
	flag.BoolVar(&opts.quiet, "q", false, "Do not print the banner")
	flag.Parse()

	if opts.url == "" && flag.NArg() > 0 {
		opts.url = flag.Arg(0)
	}
	return opts
}

func printBanner() {
	myFigure := figure.NewColorFigure("PHISHFEAT", "doom", "blue", true)
	myFigure.Print()

	cyan := color.New(color.FgCyan)
	_, _ = cyan.Println("════════════════════════════════════════════════")
	_, _ = cyan.Println("    URL feature extraction for phishing detection")
	_, _ = cyan.Println("════════════════════════════════════════════════")
}

func run(ctx context.Context, opts options, w io.Writer) error {
	if strings.TrimSpace(opts.url) == "" {
		return errors.New("a target URL is required (-u)")
	}

	patterns, err := features.LoadPatterns(opts.patterns)
	if err != nil {
		return err
	}

	cfg := features.ConfigFromEnv()
	if opts.timeout > 0 {
		cfg.ExtractTimeout = opts.timeout
	}
	engine := features.NewEngine(cfg, patterns)

	report := engine.Inspect(ctx, opts.url)

	var result *verdict.Verdict
	if opts.classifier != "" {
		c := verdict.NewHTTPClassifier(opts.classifier, cfg.HTTPTimeout)
		prediction, err := c.Predict(ctx, report.Vector)
		if err != nil {
			return fmt.Errorf("classify: %w", err)
		}
		v := verdict.Convert(opts.url, prediction, patterns)
		result = &v
	}

	if opts.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if result != nil {
			return enc.Encode(struct {
				features.Report
				Verdict *verdict.Verdict `json:"verdict"`
			}{report, result})
		}
		return enc.Encode(report)
	}

	printReport(w, report)
	if result != nil {
		printVerdict(w, *result)
	}
	return nil
}

var (
	scoreColors = map[int]*color.Color{
		features.Suspicious: color.New(color.FgRed, color.Bold),
		features.Neutral:    color.New(color.FgYellow),
		features.Legitimate: color.New(color.FgGreen),
	}
	dim = color.New(color.FgHiBlack)
)

func printReport(w io.Writer, r features.Report) {
	fmt.Fprintf(w, "\nTarget: %s  (%s)\n\n", r.URL, r.Elapsed)

	for i, name := range features.Names {
		score := r.Vector[i]
		fmt.Fprintf(w, "  %2d  %-28s %s\n", i+1, name, scoreColors[score].Sprintf("%2d", score))
	}

	a := r.Artifacts
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  http    %s\n", dim.Sprint(a.HTTP))
	fmt.Fprintf(w, "  whois   %s\n", dim.Sprint(a.Whois))
	fmt.Fprintf(w, "  dns     %s\n", dim.Sprint(a.DNS))
	fmt.Fprintf(w, "  search  %s\n", dim.Sprint(a.Search))
}

func printVerdict(w io.Writer, v verdict.Verdict) {
	c := color.New(color.FgRed, color.Bold)
	if v.Proceed {
		c = color.New(color.FgGreen, color.Bold)
	}
	fmt.Fprintf(w, "\n%s  %s (confidence %.2f)\n", c.Sprint(v.Label), v.Message, v.Confidence)
}
