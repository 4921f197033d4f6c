package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/yokaiquiz/quiz"
)

type Config struct {
	bind           string
	exclude        []string
	lang           string
	port           int
	prefix         string
	prefs          string
	profile        bool
	roster         string
	sessionTimeout time.Duration
	tick           time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	mode string
}

// validateCommon covers the settings shared by the server and play mode.
func (c *Config) validateCommon(d *Data) error {
	if c.tick <= 0 {
		return fmt.Errorf("invalid tick interval (must be positive): %s", c.tick)
	}
	if !d.text.Has(c.lang) {
		return fmt.Errorf("unsupported language %q (available: %s)", c.lang, strings.Join(d.text.Languages(), ", "))
	}
	return nil
}

func (c *Config) validate(d *Data) error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	return c.validateCommon(d)
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("YOKAIQUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "yokaiquiz",
		Short:         "A Yo-kai naming quiz, served to browsers or played in a terminal.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadData(cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := cfg.validate(d); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, d)
		},
	}

	pfs := cmd.PersistentFlags()

	pfs.StringSliceVar(&cfg.exclude, "exclude", quiz.DefaultExclusions, "names that may only be credited once per session (env: YOKAIQUIZ_EXCLUDE)")
	pfs.StringVarP(&cfg.lang, "lang", "l", "en", "default display language (env: YOKAIQUIZ_LANG)")
	pfs.StringVarP(&cfg.roster, "roster", "r", "", "directory containing yokai, tribes and games files (default: bundled roster) (env: YOKAIQUIZ_ROSTER)")
	pfs.DurationVar(&cfg.tick, "tick", 100*time.Millisecond, "interval between clock frames (env: YOKAIQUIZ_TICK)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: YOKAIQUIZ_VERBOSE)")

	fs := cmd.Flags()

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: YOKAIQUIZ_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: YOKAIQUIZ_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: YOKAIQUIZ_PREFIX)")
	fs.StringVar(&cfg.prefs, "prefs", "", "sqlite file for player preferences (default: in-memory) (env: YOKAIQUIZ_PREFS)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: YOKAIQUIZ_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle quiz rooms are closed (env: YOKAIQUIZ_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: YOKAIQUIZ_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: YOKAIQUIZ_TLS_KEY)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: YOKAIQUIZ_VERSION)")

	bindEnv(v, pfs)
	bindEnv(v, fs)

	cmd.AddCommand(newPlayCmd(cfg, v))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("yokaiquiz v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
