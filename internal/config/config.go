package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/pitchloom/internal/table"
)

// Dir is the per-user configuration directory under $HOME.
const Dir = ".pitchloom"

// Global configuration structure.
type Global struct {
	InputDir        string   `mapstructure:"input_dir" yaml:"input_dir"`
	OutputPath      string   `mapstructure:"output_path" yaml:"output_path"`
	KeyColumns      []string `mapstructure:"key_columns" yaml:"key_columns"`
	Extensions      []string `mapstructure:"extensions" yaml:"extensions"`
	SuffixSeparator string   `mapstructure:"suffix_separator" yaml:"suffix_separator"`
	FoldOrder       []string `mapstructure:"fold_order" yaml:"fold_order,omitempty"`
	Manifest        bool     `mapstructure:"manifest" yaml:"manifest"`

	// Downstream report
	ReportDir      string   `mapstructure:"report_dir" yaml:"report_dir"`
	TopN           int      `mapstructure:"top_n" yaml:"top_n"`
	FillThreshold  float64  `mapstructure:"fill_threshold" yaml:"fill_threshold"`
	Clusters       int      `mapstructure:"clusters" yaml:"clusters"`
	Seed           int64    `mapstructure:"seed" yaml:"seed"`
	TestFraction   float64  `mapstructure:"test_fraction" yaml:"test_fraction"`
	RankingMetrics []string `mapstructure:"ranking_metrics" yaml:"ranking_metrics"`
}

// Defaults mirrors the values Load falls back to.
func Defaults() *Global {
	return &Global{
		InputDir:        filepath.Join("data", "players"),
		OutputPath:      filepath.Join("data", "df_jogadores.csv"),
		KeyColumns:      []string{"player", "team"},
		Extensions:      []string{".csv"},
		SuffixSeparator: "#",
		Manifest:        true,
		ReportDir:       filepath.Join("relatorio", "graficos"),
		TopN:            10,
		FillThreshold:   0.8,
		Clusters:        4,
		Seed:            42,
		TestFraction:    0.2,
		RankingMetrics: []string{
			"goals", "assists", "xg", "xg_assist", "goals_per90", "assists_per90",
			"gca", "sca", "passes_completed", "dribbles_completed", "minutes_90s",
			"cards_yellow", "cards_red",
		},
	}
}

// DefaultPath returns ~/.pitchloom/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, Dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.pitchloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; command flags are applied by
// the caller on top.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("PITCHLOOM")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("input_dir", d.InputDir)
	v.SetDefault("output_path", d.OutputPath)
	v.SetDefault("key_columns", d.KeyColumns)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("suffix_separator", d.SuffixSeparator)
	v.SetDefault("manifest", d.Manifest)
	v.SetDefault("report_dir", d.ReportDir)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("fill_threshold", d.FillThreshold)
	v.SetDefault("clusters", d.Clusters)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("test_fraction", d.TestFraction)
	v.SetDefault("ranking_metrics", d.RankingMetrics)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, Dir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.KeyColumns = table.NormalizeColumns(c.KeyColumns)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values no run could use.
func (c *Global) Validate() error {
	switch {
	case len(c.KeyColumns) == 0:
		return fmt.Errorf("key_columns must not be empty")
	case c.SuffixSeparator == "":
		return fmt.Errorf("suffix_separator must not be empty")
	case c.FillThreshold <= 0 || c.FillThreshold > 1:
		return fmt.Errorf("fill_threshold %.2f outside (0, 1]", c.FillThreshold)
	case c.TestFraction <= 0 || c.TestFraction >= 1:
		return fmt.Errorf("test_fraction %.2f outside (0, 1)", c.TestFraction)
	case c.Clusters < 1:
		return fmt.Errorf("clusters must be positive")
	case c.TopN < 1:
		return fmt.Errorf("top_n must be positive")
	}
	return nil
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"input_dir", "output_path", "key_columns", "extensions", "suffix_separator",
	"fold_order", "manifest", "report_dir", "top_n", "fill_threshold", "clusters",
	"seed", "test_fraction", "ranking_metrics",
}

// Get renders one key for display.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "input_dir":
		return c.InputDir, nil
	case "output_path":
		return c.OutputPath, nil
	case "key_columns":
		return strings.Join(c.KeyColumns, ","), nil
	case "extensions":
		return strings.Join(c.Extensions, ","), nil
	case "suffix_separator":
		return c.SuffixSeparator, nil
	case "fold_order":
		return strings.Join(c.FoldOrder, ","), nil
	case "manifest":
		return strconv.FormatBool(c.Manifest), nil
	case "report_dir":
		return c.ReportDir, nil
	case "top_n":
		return strconv.Itoa(c.TopN), nil
	case "fill_threshold":
		return strconv.FormatFloat(c.FillThreshold, 'f', -1, 64), nil
	case "clusters":
		return strconv.Itoa(c.Clusters), nil
	case "seed":
		return strconv.FormatInt(c.Seed, 10), nil
	case "test_fraction":
		return strconv.FormatFloat(c.TestFraction, 'f', -1, 64), nil
	case "ranking_metrics":
		return strings.Join(c.RankingMetrics, ","), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val into key. Lists are comma-separated.
func (c *Global) Set(key, val string) error {
	switch key {
	case "input_dir":
		c.InputDir = val
	case "output_path":
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("output_path must not be empty")
		}
		c.OutputPath = val
	case "key_columns":
		keys := table.NormalizeColumns(splitList(val))
		if len(keys) == 0 {
			return fmt.Errorf("key_columns must not be empty")
		}
		c.KeyColumns = keys
	case "extensions":
		c.Extensions = splitList(val)
	case "suffix_separator":
		if val == "" {
			return fmt.Errorf("suffix_separator must not be empty")
		}
		c.SuffixSeparator = val
	case "fold_order":
		c.FoldOrder = splitList(val)
	case "manifest":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for manifest: %w", err)
		}
		c.Manifest = b
	case "report_dir":
		c.ReportDir = val
	case "top_n", "clusters":
		i, err := strconv.Atoi(val)
		if err != nil || i < 1 {
			return fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		if key == "top_n" {
			c.TopN = i
		} else {
			c.Clusters = i
		}
	case "fill_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 || f > 1 {
			return fmt.Errorf("invalid float for fill_threshold: %v", val)
		}
		c.FillThreshold = f
	case "seed":
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int for seed: %w", err)
		}
		c.Seed = i
	case "test_fraction":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 || f >= 1 {
			return fmt.Errorf("invalid float for test_fraction: %v", val)
		}
		c.TestFraction = f
	case "ranking_metrics":
		c.RankingMetrics = splitList(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
