package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muwaqqit/tarikh/pkg/almanac"
	"github.com/muwaqqit/tarikh/pkg/config"
	"github.com/muwaqqit/tarikh/pkg/keywords"
	"github.com/muwaqqit/tarikh/pkg/logger"
	"github.com/muwaqqit/tarikh/pkg/pipeline"
	"github.com/muwaqqit/tarikh/pkg/types"
	"github.com/muwaqqit/tarikh/pkg/watch"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "tarikh",
		Short: "Multicalendar date recognizer",
		Long: `Tarikh finds and normalizes date mentions in Arabic, Persian, and
English text across the Gregorian, Hijri, and Persian solar calendars.

It recognizes:
  - Simple dates, month-year forms, bare years, and centuries
  - Ranges, financial years, and dual-calendar restatements
  - Eastern Arabic and Persian digits, month names, era markers
  - Dual-calendar disagreements, flagged or repaired within tolerance`,
		Version: version,
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(almanacCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration, then lays any command line
// overrides on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("lang") {
		cfg.Languages, _ = flags.GetStringSlice("lang")
	}
	if flags.Changed("dedup-policy") {
		cfg.DedupPolicy, _ = flags.GetString("dedup-policy")
	}
	if flags.Changed("dedup-tolerance") {
		cfg.DedupToleranceDays, _ = flags.GetInt("dedup-tolerance")
	}
	if flags.Changed("calendar-hint") {
		cfg.DefaultCalendar, _ = flags.GetString("calendar-hint")
	}
	return cfg, nil
}

func openAlmanac(cfg *config.Config) (*almanac.Service, error) {
	if cfg.AlmanacPath != "" {
		f, err := os.Open(cfg.AlmanacPath)
		if err != nil {
			return nil, fmt.Errorf("opening almanac %s: %w", cfg.AlmanacPath, err)
		}
		defer f.Close()
		return almanac.Load(f)
	}
	return almanac.New(almanac.Options{
		StartYear: cfg.AlmanacFromYear,
		EndYear:   cfg.AlmanacToYear,
	})
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract date mentions from text",
		Long: `Extract date mentions from a file, or from standard input when no
file is given.

Every mention is normalized to its calendar components, classified
(simple, range, alternative form, financial year, compound),
validated against the conversion table, deduplicated, and rendered
as one canonical English line.

Examples:
  tarikh extract document.txt
  cat document.txt | tarikh extract
  tarikh extract --format json document.txt
  tarikh extract --lang ar,fa document.txt
  tarikh extract --dedup-policy keep_most_complete document.txt
  tarikh extract --calendar-hint hijri numbers.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
				name = "stdin"
			)
			if len(args) > 0 {
				name = args[0]
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			eng, err := pipeline.New(cfg, pipeline.WithLogger(logger.New(cfg.LogLevel)))
			if err != nil {
				return err
			}
			res, err := eng.Process(string(data))
			if err != nil {
				return err
			}

			if format, _ := cmd.Flags().GetString("format"); format == "json" {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printResult(name, res)
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
	cmd.Flags().StringSlice("lang", nil, "Languages to scan (ar, fa, en)")
	cmd.Flags().StringP("config", "c", "", "Configuration file (YAML)")
	cmd.Flags().String("dedup-policy", "keep_first", "Duplicate survivor policy (keep_first, keep_most_complete)")
	cmd.Flags().Int("dedup-tolerance", 1, "Days within which two mentions collapse into one")
	cmd.Flags().String("calendar-hint", "", "Calendar assumed for evidence-free numeric dates")
	return cmd
}

func printResult(name string, res pipeline.Result) {
	if len(res.Entities) == 0 {
		fmt.Printf("No dates found in %s.\n", name)
		return
	}

	fmt.Printf("Found %d date mention(s) in %s:\n\n", len(res.Entities), name)
	for i, e := range res.Entities {
		fmt.Printf("%d. %s\n", i+1, e.Raw)
		fmt.Printf("   span:      %d-%d\n", e.Span.Start, e.Span.End)
		fmt.Printf("   relation:  %s\n", e.Relation)
		if cals := e.Calendars(); len(cals) > 0 {
			names := make([]string, len(cals))
			for j, c := range cals {
				names[j] = string(c)
			}
			fmt.Printf("   calendars: %s\n", strings.Join(names, ", "))
		}
		fmt.Printf("   rendered:  %s\n", e.Rendered)
		if e.Invalid {
			fmt.Printf("   invalid:   the restated calendars disagree beyond tolerance\n")
		}
		for _, c := range e.Corrections {
			fmt.Printf("   corrected: %s %s %s -> %s (%s)\n", c.Slot, c.Field, c.From, c.To, c.Reason)
		}
	}
}

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a date between calendars",
		Long: `Convert one date from a named calendar to the other two.

With --date the conversion goes through the loaded day table and
also reports the weekday. Dates outside the table fall back to
arithmetic and are marked approximate; civil Hijri reckoning can
differ a day or two from observational almanacs. With --year alone
the output is the approximate location of that calendar year.

Examples:
  tarikh convert --calendar hijri --date 1445-01-15
  tarikh convert --calendar gregorian --date 2023-07-19
  tarikh convert --calendar persian --year 1402`,
		RunE: func(cmd *cobra.Command, args []string) error {
			calName, _ := cmd.Flags().GetString("calendar")
			dateStr, _ := cmd.Flags().GetString("date")
			year, _ := cmd.Flags().GetInt("year")

			cal := types.Calendar(calName)
			if !cal.Known() {
				return fmt.Errorf("unknown calendar %q (use gregorian, hijri, persian)", calName)
			}

			if dateStr != "" {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				svc, err := openAlmanac(cfg)
				if err != nil {
					return err
				}
				var d almanac.Date
				if _, err := fmt.Sscanf(dateStr, "%d-%d-%d", &d.Year, &d.Month, &d.Day); err != nil {
					return fmt.Errorf("date %q is not YYYY-MM-DD", dateStr)
				}
				return printConversion(svc, d, cal)
			}
			if year != 0 {
				return printYear(year, cal)
			}
			return fmt.Errorf("provide --date or --year")
		},
	}

	cmd.Flags().String("calendar", "gregorian", "Calendar of the input (gregorian, hijri, persian)")
	cmd.Flags().String("date", "", "Date to convert, YYYY-MM-DD")
	cmd.Flags().Int("year", 0, "Year to locate instead of a full date")
	cmd.Flags().StringP("config", "c", "", "Configuration file (YAML)")
	return cmd
}

func printConversion(svc *almanac.Service, d almanac.Date, cal types.Calendar) error {
	exact := true
	results := make(map[types.Calendar]almanac.Date, 2)
	for _, to := range types.Calendars() {
		if to == cal {
			continue
		}
		out, ok := svc.Convert(d, cal, to)
		if !ok {
			exact = false
			out, ok = almanac.ConvertApprox(d, cal, to)
		}
		if !ok {
			return fmt.Errorf("%s is not a valid %s date", d, cal)
		}
		results[to] = out
	}

	fmt.Printf("%s %s", cal, d)
	if wd, ok := svc.Weekday(d, cal); ok {
		fmt.Printf(" (%s)", keywords.WeekdayLabel(wd))
	}
	fmt.Println()
	for _, to := range types.Calendars() {
		if to == cal {
			continue
		}
		fmt.Printf("  %-10s %s\n", string(to)+":", results[to])
	}
	if !exact {
		fmt.Println("  note: outside the loaded table, converted arithmetically (approximate)")
	}
	return nil
}

func printYear(year int, cal types.Calendar) error {
	lo, hi, ok := almanac.YearSpan(year, cal)
	if !ok {
		return fmt.Errorf("cannot place year %d in the %s calendar", year, cal)
	}

	fmt.Printf("%s year %d (approximate, civil reckoning):\n", cal, year)
	fmt.Printf("  length: %d days\n", hi-lo+1)
	first := almanac.Date{Year: year, Month: 1, Day: 1}
	for _, to := range types.Calendars() {
		if to == cal {
			continue
		}
		if out, ok := almanac.ConvertApprox(first, cal, to); ok {
			fmt.Printf("  begins: %s (%s)\n", out, to)
		}
	}
	return nil
}

func almanacCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "almanac",
		Short: "Generate or inspect the conversion table",
	}
	cmd.AddCommand(almanacGenerateCmd())
	cmd.AddCommand(almanacInfoCmd())
	return cmd
}

func almanacGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the conversion table as CSV",
		Long: `Generate the day-by-day conversion table for a Gregorian year
range and write it as versioned CSV. The file can be loaded back
through the almanac_path configuration key, or replaced by an
observational table in the same format.

Example:
  tarikh almanac generate --from 1938 --to 2077 --output almanac.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetInt("from")
			to, _ := cmd.Flags().GetInt("to")
			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				return fmt.Errorf("--output flag is required")
			}

			svc, err := almanac.New(almanac.Options{StartYear: from, EndYear: to})
			if err != nil {
				return err
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			if err := svc.Save(f); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			lo, hi := svc.Range()
			fmt.Printf("Wrote %d days (%s to %s) to %s\n", svc.Len(), lo, hi, output)
			return nil
		},
	}

	cmd.Flags().Int("from", almanac.DefaultStartYear, "First Gregorian year")
	cmd.Flags().Int("to", almanac.DefaultEndYear, "Last Gregorian year")
	cmd.Flags().StringP("output", "o", "", "Output CSV path")
	return cmd
}

func almanacInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the coverage of the loaded table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svc, err := openAlmanac(cfg)
			if err != nil {
				return err
			}

			source := "generated arithmetically"
			if cfg.AlmanacPath != "" {
				source = cfg.AlmanacPath
			}
			lo, hi := svc.Range()
			rows := svc.Rows()
			fmt.Printf("Source:    %s\n", source)
			fmt.Printf("Days:      %d\n", svc.Len())
			fmt.Printf("Gregorian: %s to %s\n", lo, hi)
			fmt.Printf("Hijri:     %s to %s\n", rows[0].Hijri, rows[len(rows)-1].Hijri)
			fmt.Printf("Persian:   %s to %s\n", rows[0].Persian, rows[len(rows)-1].Persian)
			return nil
		},
	}

	cmd.Flags().StringP("config", "c", "", "Configuration file (YAML)")
	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a directory and extract dates from changed files",
		Long: `Watch a directory and run extraction over every .txt or .md file
as it appears or changes. Files already present are processed once
at startup. Stop with Ctrl-C.

Examples:
  tarikh watch --dir ./inbox
  tarikh watch --dir ./inbox --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			format, _ := cmd.Flags().GetString("format")
			if dir == "" {
				return fmt.Errorf("--dir flag is required")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			eng, err := pipeline.New(cfg, pipeline.WithLogger(logger.New(cfg.LogLevel)))
			if err != nil {
				return err
			}

			m, err := watch.NewMonitor(watch.Options{Dir: dir})
			if err != nil {
				return err
			}
			m.OnDocument(func(doc watch.Document) error {
				res, err := eng.Process(doc.Text)
				if err != nil {
					return fmt.Errorf("%s: %w", doc.Path, err)
				}
				if format == "json" {
					return json.NewEncoder(os.Stdout).Encode(struct {
						Path string `json:"path"`
						pipeline.Result
					}{doc.Path, res})
				}
				printResult(doc.Path, res)
				fmt.Println()
				return nil
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if err := m.Start(ctx); err != nil {
				return err
			}
			fmt.Printf("Watching %s for .txt and .md files. Ctrl-C to stop.\n\n", dir)
			<-ctx.Done()

			if err := m.Stop(); err != nil {
				return err
			}
			st := m.Status()
			fmt.Printf("\nProcessed %d document(s).\n", st.Documents)
			for _, e := range st.Errors {
				fmt.Fprintf(os.Stderr, "warning: %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().StringP("dir", "d", "", "Directory to watch")
	cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
	cmd.Flags().StringP("config", "c", "", "Configuration file (YAML)")
	cmd.Flags().StringSlice("lang", nil, "Languages to scan (ar, fa, en)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tarikh %s\n", version)
		},
	}
}
