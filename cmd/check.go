package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/OliveiraNt/polyglot/internal/application"
	"github.com/OliveiraNt/polyglot/internal/domain"
	"github.com/OliveiraNt/polyglot/internal/infrastructure/repository"
	"github.com/spf13/cobra"
)

var checkFormat string

var checkCmd = &cobra.Command{
	Use:   "check [manifest]",
	Short: "Validate a language manifest and report translation coverage",
	Long: `Load the manifest and every enabled language bundle exactly as the service
would. Exits non-zero when the manifest or a bundle is invalid, otherwise
prints how complete each language is compared to the default one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "output format: text, json or markdown")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	manifest := ""
	if len(args) == 1 {
		manifest = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		manifest = cfg.Manifest
	}

	write, ok := reportWriters[checkFormat]
	if !ok {
		return fmt.Errorf("unknown format %q", checkFormat)
	}

	repo := repository.NewCatalogRepository(manifest)
	if err := repo.LoadFromFile(); err != nil {
		return fmt.Errorf("%s: %w", manifest, err)
	}

	report, err := application.NewLanguageService(repo).Status()
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), report)
}

var reportWriters = map[string]func(io.Writer, domain.StatusReport) error{
	"text":     writeTextReport,
	"json":     writeJSONReport,
	"markdown": writeMarkdownReport,
}

func writeTextReport(w io.Writer, r domain.StatusReport) error {
	fmt.Fprintf(w, "manifest: %s\ndefault: %s (%d keys)\n\n", r.Manifest, r.Default, r.BaseKeys)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tTRANSLATED\tMISSING\tEXTRA\tCOMPLETION")
	for _, l := range r.Languages {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.1f%%\n", l.Code, l.Name, l.Translated, l.Missing, l.Extra, l.Completion)
	}
	return tw.Flush()
}

func writeJSONReport(w io.Writer, r domain.StatusReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeMarkdownReport(w io.Writer, r domain.StatusReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Translation status\n\nDefault language: `%s` (%d keys)\n\n", r.Default, r.BaseKeys)
	b.WriteString("| Code | Name | Translated | Missing | Extra | Completion |\n")
	b.WriteString("|------|------|-----------:|--------:|------:|-----------:|\n")
	for _, l := range r.Languages {
		fmt.Fprintf(&b, "| `%s` | %s | %d | %d | %d | %.1f%% |\n",
			l.Code, strings.ReplaceAll(l.Name, "|", `\|`), l.Translated, l.Missing, l.Extra, l.Completion)
	}
	for _, l := range r.Languages {
		if len(l.MissingKeys) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## Missing in `%s`\n\n", l.Code)
		for _, k := range l.MissingKeys {
			fmt.Fprintf(&b, "- `%s`\n", k)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
