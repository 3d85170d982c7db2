package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"pagegrab/internal/fetcher"
	"pagegrab/internal/output"
	"pagegrab/internal/runner"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

var (
	cfgFile         string
	operation       string
	maxDepth        int
	useBrowser      bool
	headersInput    string
	headerType      string
	cookiesInput    string
	cookieType      string
	proxies         []string
	staticTimeout   time.Duration
	browserTimeout  time.Duration
	textMode        string
	outputFormat    string
	outputFile      string
	dbFile          string
	itemsFile       string
	continueOnError bool
	showUI          bool
	verbose         bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "pagegrab [URL]",
		Short:   "Single-page web content extractor",
		Version: version,
		Long: `pagegrab fetches a single web page and extracts outbound links,
visible text, or raw HTML. Pages that require JavaScript execution can
be fetched through a headless browser with --browser. Custom headers,
cookies and proxies are applied per request.`,
		Example: `  # Extract all outbound links
  pagegrab -O extractLinks https://example.com

  # Extract visible text from a client-rendered page
  pagegrab -O extractText --browser https://example.com/app

  # Raw headers and cookies, markdown output
  pagegrab -O extractHtml -f markdown \
    -H $'Accept: text/html\nX-Token: abc' --cookies "sid=123" https://example.com

  # Batch mode: one JSON item per line, results into SQLite
  pagegrab --items items.jsonl --continue-on-error --db results.db`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && itemsFile == "" {
				cmd.Help()
				os.Exit(0)
			}
			return cobra.MaximumNArgs(1)(cmd, args)
		},
		RunE:         run,
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pagegrab.yaml)")
	rootCmd.Flags().StringVarP(&operation, "operation", "O", "extractText", "Extraction operation (extractLinks, extractText, extractHtml)")
	rootCmd.Flags().IntVar(&maxDepth, "max-depth", 1, "Accepted for host compatibility; only the given URL is fetched")
	rootCmd.Flags().BoolVar(&useBrowser, "browser", false, "Render the page in a headless browser before extraction")
	rootCmd.Flags().StringVarP(&headersInput, "headers", "H", "", "Request headers, JSON object or raw text (see --header-type)")
	rootCmd.Flags().StringVar(&headerType, "header-type", "auto", "How to interpret --headers (auto, json, raw)")
	rootCmd.Flags().StringVar(&cookiesInput, "cookies", "", "Request cookies, JSON object or raw 'k=v; k2=v2' text (see --cookie-type)")
	rootCmd.Flags().StringVar(&cookieType, "cookie-type", "auto", "How to interpret --cookies (auto, json, raw)")
	rootCmd.Flags().StringSliceVarP(&proxies, "proxy", "p", nil, "Proxy URL, can be used multiple times (round-robin)")
	rootCmd.Flags().DurationVarP(&staticTimeout, "timeout", "t", 30*time.Second, "Timeout for direct HTTP fetches")
	rootCmd.Flags().DurationVar(&browserTimeout, "browser-timeout", 120*time.Second, "Timeout for browser-rendered fetches")
	rootCmd.Flags().StringVar(&textMode, "text-mode", "body", "Text extraction mode (body, article)")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, text, markdown)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (stdout if empty)")
	rootCmd.Flags().StringVar(&dbFile, "db", "", "SQLite database file to persist result records")
	rootCmd.Flags().StringVar(&itemsFile, "items", "", "Batch file with one JSON item per line")
	rootCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Capture per-item failures instead of aborting the batch")
	rootCmd.Flags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pagegrab")
	}

	viper.SetEnvPrefix("pagegrab")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func run(cmd *cobra.Command, args []string) error {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	if err := validateFlags(); err != nil {
		return err
	}

	items, err := collectItems(args)
	if err != nil {
		return err
	}

	f := fetcher.New()
	f.StaticTimeout = staticTimeout
	f.BrowserTimeout = browserTimeout
	f.TextMode = fetcher.TextMode(textMode)
	f.ShowUI = showUI
	applyConfigDefaults(cmd, f)

	r := runner.New(f)
	r.ContinueOnError = continueOnError

	records, err := r.Run(context.Background(), items)
	if err != nil {
		return err
	}

	if dbFile != "" {
		sink := &output.SQLiteSink{Database: dbFile}
		if err := sink.Init(); err != nil {
			return err
		}
		defer sink.Cleanup()
		for _, rec := range records {
			if err := sink.Write(rec); err != nil {
				return err
			}
		}
		log.Debug("results persisted", "db", dbFile, "records", len(records))
	}

	rendered, err := output.Format(records, outputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Output written to: %s\n", outputFile)
	} else {
		fmt.Println(rendered)
	}

	return nil
}

// applyConfigDefaults overrides fetcher settings from the config file
// for flags the user did not set explicitly.
func applyConfigDefaults(cmd *cobra.Command, f *fetcher.Fetcher) {
	if !cmd.Flags().Changed("timeout") && viper.IsSet("static_timeout") {
		f.StaticTimeout = viper.GetDuration("static_timeout")
	}
	if !cmd.Flags().Changed("browser-timeout") && viper.IsSet("browser_timeout") {
		f.BrowserTimeout = viper.GetDuration("browser_timeout")
	}
	if !cmd.Flags().Changed("text-mode") && viper.IsSet("text_mode") {
		f.TextMode = fetcher.TextMode(viper.GetString("text_mode"))
	}
}

// collectItems builds the batch: either the single URL from the command
// line, or the items file with one JSON item per line.
func collectItems(args []string) ([]runner.Item, error) {
	if itemsFile != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("cannot use both --items and a URL argument")
		}
		file, err := os.Open(itemsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open items file: %w", err)
		}
		defer file.Close()
		items, err := runner.ParseItems(file)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("items file %s is empty", itemsFile)
		}
		return items, nil
	}

	headers, hType, err := mappingInput(headersInput, headerType)
	if err != nil {
		return nil, fmt.Errorf("invalid --headers: %w", err)
	}
	cookies, cType, err := mappingInput(cookiesInput, cookieType)
	if err != nil {
		return nil, fmt.Errorf("invalid --cookies: %w", err)
	}

	return []runner.Item{{
		URL:        normalizeURL(args[0]),
		Operation:  operation,
		UseBrowser: useBrowser,
		ProxyURLs:  strings.Join(proxies, "\n"),
		HeaderType: hType,
		Headers:    headers,
		CookieType: cType,
		Cookies:    cookies,
		MaxDepth:   maxDepth,
	}}, nil
}

// mappingInput encodes a CLI headers/cookies value for an item. In auto
// mode a value starting with '{' is treated as a JSON object, anything
// else as raw text.
func mappingInput(value, typ string) (json.RawMessage, runner.InputType, error) {
	if value == "" {
		return nil, "", nil
	}
	switch typ {
	case "json":
		return json.RawMessage(value), runner.InputJSON, nil
	case "raw":
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, "", err
		}
		return encoded, runner.InputRaw, nil
	case "auto":
		if strings.HasPrefix(strings.TrimSpace(value), "{") {
			return json.RawMessage(value), runner.InputJSON, nil
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, "", err
		}
		return encoded, runner.InputRaw, nil
	default:
		return nil, "", fmt.Errorf("invalid input type %q (valid: auto, json, raw)", typ)
	}
}

func validateFlags() error {
	if _, err := fetcher.ParseOperation(operation); err != nil {
		return err
	}

	validFormats := map[string]bool{
		"json":     true,
		"text":     true,
		"markdown": true,
	}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format: %s", outputFormat)
	}

	validTextModes := map[string]bool{
		"body":    true,
		"article": true,
	}
	if !validTextModes[textMode] {
		return fmt.Errorf("invalid text mode: %s", textMode)
	}

	return nil
}

// normalizeURL adds http:// if the URL has no protocol prefix.
func normalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return rawURL
	}
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "http://" + rawURL
	}
	return rawURL
}
