// Package config holds the runtime settings of the recognizer,
// loaded from an optional YAML file with TARIKH_* environment
// overrides on top. Priority: environment > file > built-in defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/muwaqqit/tarikh/pkg/almanac"
	"github.com/muwaqqit/tarikh/pkg/keywords"
	"github.com/muwaqqit/tarikh/pkg/types"
)

// Config is the root configuration. Zero values are not usable as
// such; obtain one through Load or Default.
type Config struct {
	Languages                []string `yaml:"languages"                   env:"TARIKH_LANGUAGES"                   env-default:"ar,fa,en"`
	MaxInputLength           int      `yaml:"max_input_length"            env:"TARIKH_MAX_INPUT_LENGTH"            env-default:"262144"`
	MatchStepBudget          int      `yaml:"match_step_budget"           env:"TARIKH_MATCH_STEP_BUDGET"           env-default:"10000"`
	DedupToleranceDays       int      `yaml:"dedup_tolerance_days"        env:"TARIKH_DEDUP_TOLERANCE_DAYS"        env-default:"1"`
	DedupPolicy              string   `yaml:"dedup_policy"                env:"TARIKH_DEDUP_POLICY"                env-default:"keep_first"`
	AltToleranceDays         int      `yaml:"alt_tolerance_days"          env:"TARIKH_ALT_TOLERANCE_DAYS"          env-default:"5"`
	AutoCorrectMaxDays       int      `yaml:"auto_correct_max_days"       env:"TARIKH_AUTO_CORRECT_MAX_DAYS"       env-default:"2"`
	FinancialYearStartMonths []int    `yaml:"financial_year_start_months" env:"TARIKH_FINANCIAL_YEAR_START_MONTHS" env-default:"1,4,7,10"`
	FinancialYearEndMonths   []int    `yaml:"financial_year_end_months"   env:"TARIKH_FINANCIAL_YEAR_END_MONTHS"   env-default:"3,6,9,12"`
	DefaultCalendar          string   `yaml:"default_calendar"            env:"TARIKH_DEFAULT_CALENDAR"`
	AlmanacFromYear          int      `yaml:"almanac_from_year"           env:"TARIKH_ALMANAC_FROM_YEAR"           env-default:"1938"`
	AlmanacToYear            int      `yaml:"almanac_to_year"             env:"TARIKH_ALMANAC_TO_YEAR"             env-default:"2077"`
	AlmanacPath              string   `yaml:"almanac_path"                env:"TARIKH_ALMANAC_PATH"`
	KeywordPackDir           string   `yaml:"keyword_pack_dir"            env:"TARIKH_KEYWORD_PACK_DIR"`
	LogLevel                 string   `yaml:"log_level"                   env:"TARIKH_LOG_LEVEL"                   env-default:"info"`
}

// Load reads configuration from a YAML file and the environment. An
// empty path means environment plus defaults only; a named file must
// exist. The result is validated.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration, ignoring file and
// environment.
func Default() *Config {
	return &Config{
		Languages:                []string{"ar", "fa", "en"},
		MaxInputLength:           262144,
		MatchStepBudget:          10000,
		DedupToleranceDays:       1,
		DedupPolicy:              string(types.KeepFirst),
		AltToleranceDays:         5,
		AutoCorrectMaxDays:       2,
		FinancialYearStartMonths: []int{1, 4, 7, 10},
		FinancialYearEndMonths:   []int{3, 6, 9, 12},
		AlmanacFromYear:          almanac.DefaultStartYear,
		AlmanacToYear:            almanac.DefaultEndYear,
		LogLevel:                 "info",
	}
}

// Validate rejects settings no component could run with. Every
// problem is collected and reported in one error.
func (c *Config) Validate() error {
	var problems []string

	if len(c.Languages) == 0 {
		problems = append(problems, "languages: at least one language required")
	}
	for _, l := range c.Languages {
		if !keywords.Language(l).Valid() {
			problems = append(problems, fmt.Sprintf("languages: unknown language %q", l))
		}
	}
	if c.MaxInputLength < 0 {
		problems = append(problems, fmt.Sprintf("max_input_length: must not be negative (got %d)", c.MaxInputLength))
	}
	if c.MatchStepBudget < 0 {
		problems = append(problems, fmt.Sprintf("match_step_budget: must not be negative (got %d)", c.MatchStepBudget))
	}
	if c.DedupToleranceDays < 0 {
		problems = append(problems, fmt.Sprintf("dedup_tolerance_days: must not be negative (got %d)", c.DedupToleranceDays))
	}
	if c.AltToleranceDays < 0 {
		problems = append(problems, fmt.Sprintf("alt_tolerance_days: must not be negative (got %d)", c.AltToleranceDays))
	}
	if c.AutoCorrectMaxDays < 0 {
		problems = append(problems, fmt.Sprintf("auto_correct_max_days: must not be negative (got %d)", c.AutoCorrectMaxDays))
	}
	if !types.DedupPolicy(c.DedupPolicy).Valid() {
		problems = append(problems, fmt.Sprintf("dedup_policy: unknown policy %q", c.DedupPolicy))
	}
	if c.DefaultCalendar != "" && !types.Calendar(c.DefaultCalendar).Known() {
		problems = append(problems, fmt.Sprintf("default_calendar: unknown calendar %q", c.DefaultCalendar))
	}
	if c.AlmanacFromYear > c.AlmanacToYear {
		problems = append(problems, fmt.Sprintf("almanac_from_year: %d is after almanac_to_year %d", c.AlmanacFromYear, c.AlmanacToYear))
	}
	for _, m := range c.FinancialYearStartMonths {
		if m < 1 || m > 12 {
			problems = append(problems, fmt.Sprintf("financial_year_start_months: month %d out of range", m))
		}
	}
	for _, m := range c.FinancialYearEndMonths {
		if m < 1 || m > 12 {
			problems = append(problems, fmt.Sprintf("financial_year_end_months: month %d out of range", m))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// LanguageList returns the configured languages in declaration order.
func (c *Config) LanguageList() []keywords.Language {
	out := make([]keywords.Language, len(c.Languages))
	for i, l := range c.Languages {
		out[i] = keywords.Language(l)
	}
	return out
}

// Policy returns the dedup policy as its typed value.
func (c *Config) Policy() types.DedupPolicy {
	return types.DedupPolicy(c.DedupPolicy)
}

// Calendar returns the hint applied to evidence-free numeric dates,
// empty for none.
func (c *Config) Calendar() types.Calendar {
	return types.Calendar(c.DefaultCalendar)
}
