package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"emailcss/internal/config"
	"emailcss/internal/state"
	"emailcss/pkg/inliner"
)

const stdinName = "<stdin>"

// processor carries what a single convert or validate run needs
type processor struct {
	engine *inliner.Inliner
	log    *zap.Logger
	stdin  io.Reader
	stdout io.Writer
	stats  bool
}

func newProcessor(ctx context.Context, cmd *cli.Command) (*processor, error) {
	env := state.EnvFromContext(ctx)

	cfg := env.Cfg.Inliner
	if cmd.Bool("keep-style-tags") {
		cfg.RemoveStyleTags = false
	}
	cfg, err := withTarget(cfg, cmd.String("target"))
	if err != nil {
		return nil, err
	}
	return &processor{
		engine: inliner.New(cfg, env.Log),
		log:    env.Log,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stats:  cmd.Bool("stats"),
	}, nil
}

// withTarget overrides the configured email client, "" keeps it
func withTarget(cfg config.InlinerConfig, target string) (config.InlinerConfig, error) {
	if target == "" {
		return cfg, nil
	}
	if !slices.Contains(config.TargetClients, target) {
		return cfg, fmt.Errorf("unknown target client '%s', expected one of %s", target, strings.Join(config.TargetClients, ", "))
	}
	cfg.TargetClient = target
	return cfg, nil
}

func runConvert(ctx context.Context, cmd *cli.Command) error {
	p, err := newProcessor(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Args().Len() > 1 {
		p.log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	src := cmd.Args().Get(0)
	output, outputDir := cmd.String("output"), cmd.String("output-dir")

	if src == "" || src == "-" {
		return p.convertStream(output)
	}

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("unable to access source '%s': %w", src, err)
	}
	if fi.IsDir() {
		if outputDir == "" {
			return fmt.Errorf("--output-dir is required when SOURCE is a directory")
		}
		return p.convertDir(src, outputDir)
	}

	if output == "" && outputDir != "" {
		output = filepath.Join(outputDir, filepath.Base(src))
	}
	return p.convertFile(src, output)
}

// convertStream processes HTML from stdin and outputs to stdout or output
func (p *processor) convertStream(output string) error {
	content, err := io.ReadAll(p.stdin)
	if err != nil {
		return fmt.Errorf("failed to read from stdin: %w", err)
	}
	return p.convert(stdinName, content, output)
}

func (p *processor) convertFile(src, output string) error {
	content, err := readHTMLFile(src)
	if err != nil {
		return err
	}
	return p.convert(src, content, output)
}

// readHTMLFile reads src refusing content recognized as a binary format
func readHTMLFile(src string) ([]byte, error) {
	content, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file '%s': %w", src, err)
	}
	if kind, err := filetype.Match(content); err == nil && kind != filetype.Unknown {
		return nil, fmt.Errorf("input file '%s' is %s, not HTML", src, kind.MIME.Value)
	}
	return content, nil
}

// convertDir processes every HTML file under src keeping the directory
// structure. A failing file does not stop the batch, all failures are
// reported together.
func (p *processor) convertDir(src, outputDir string) (err error) {
	files, err := findHTMLFiles(src)
	if err != nil {
		return fmt.Errorf("failed to find HTML files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no HTML files found in directory '%s'", src)
	}

	for i, path := range files {
		p.log.Debug("Processing", zap.Int("n", i+1), zap.Int("of", len(files)), zap.String("file", path))

		rel, er := filepath.Rel(src, path)
		if er != nil {
			err = multierr.Append(err, er)
			continue
		}
		dst := filepath.Join(outputDir, rel)
		if er := os.MkdirAll(filepath.Dir(dst), 0755); er != nil {
			err = multierr.Append(err, fmt.Errorf("failed to create output directory: %w", er))
			continue
		}
		if er := p.convertFile(path, dst); er != nil {
			err = multierr.Append(err, er)
		}
	}

	if failed := len(multierr.Errors(err)); failed > 0 {
		p.log.Warn("Batch finished with errors", zap.Int("files", len(files)), zap.Int("failed", failed))
	} else {
		p.log.Info("Batch finished", zap.Int("files", len(files)))
	}
	return err
}

func (p *processor) convert(name string, content []byte, output string) error {
	result, err := p.engine.Inline(string(content))
	if err != nil {
		return fmt.Errorf("failed to inline CSS for '%s': %w", name, err)
	}
	if err := p.writeOutput(result.HTML, output); err != nil {
		return fmt.Errorf("failed to write output for '%s': %w", name, err)
	}

	if p.stats {
		p.log.Info("Processing statistics",
			zap.String("file", name),
			zap.Int("inlined_styles", result.InlinedStyles),
			zap.Int("elements_scanned", result.ElementsScanned),
			zap.Int("css_rules", result.ProcessingStats.CSSRulesParsed),
			zap.Int("elements_styled", result.ProcessingStats.HTMLElementsProcessed),
			zap.Int("selectors_matched", result.ProcessingStats.SelectorsMatched),
			zap.Int("flex_rows", result.ProcessingStats.FlexRowsConverted),
			zap.Int64("ms", result.ProcessingStats.ProcessingTimeMs))
	}
	for _, w := range result.Warnings {
		p.log.Debug("Compatibility warning", zap.String("file", name), zap.String("severity", w.Severity),
			zap.String("property", w.Property), zap.String("value", w.Value), zap.String("message", w.Message))
	}
	return nil
}

// writeOutput writes content to a file or stdout
func (p *processor) writeOutput(content, filename string) error {
	if filename == "" {
		_, err := io.WriteString(p.stdout, content)
		return err
	}
	return os.WriteFile(filename, []byte(content), 0644)
}

// findHTMLFiles finds all HTML files in a directory in natural order, symbolic
// links are not followed
func findHTMLFiles(dir string) ([]string, error) {
	var htmlFiles []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			switch strings.ToLower(filepath.Ext(path)) {
			case ".html", ".htm":
				htmlFiles = append(htmlFiles, path)
			}
		}
		return nil
	})
	sort.Sort(natural.StringSlice(htmlFiles))
	return htmlFiles, err
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	p, err := newProcessor(ctx, cmd)
	if err != nil {
		return err
	}
	return p.validate(cmd.Args().Get(0))
}

// validate reports compatibility issues of src, "" or "-" meaning stdin. It
// fails when an issue of error severity is found.
func (p *processor) validate(src string) error {
	var (
		content []byte
		err     error
	)
	name := src
	if src == "" || src == "-" {
		name = stdinName
		content, err = io.ReadAll(p.stdin)
	} else {
		content, err = readHTMLFile(src)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	issues, err := p.engine.ValidateHTML(string(content))
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if len(issues) == 0 {
		fmt.Fprintf(p.stdout, "%s: no email compatibility issues found\n", name)
		return nil
	}

	errorsFound := 0
	fmt.Fprintf(p.stdout, "%s: found %d email compatibility issues:\n", name, len(issues))
	for _, issue := range issues {
		if issue.Severity == "error" {
			errorsFound++
		}
		fmt.Fprintf(p.stdout, "  [%s] %s: %s\n", strings.ToUpper(issue.Severity), issue.Element, issue.Message)
		if issue.Property != "" {
			fmt.Fprintf(p.stdout, "         property: %s\n", issue.Property)
		}
	}
	if errorsFound > 0 {
		return fmt.Errorf("%s: %d compatibility errors", name, errorsFound)
	}
	return nil
}
