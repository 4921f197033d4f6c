/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Seednode/yokaiquiz/roster"
	"github.com/Seednode/yokaiquiz/tui"
)

const playLogFile = "yokaiquiz-play.log"

func newPlayCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in the terminal.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			// log lines would corrupt the alternate screen
			if cfg.verbose {
				f, err := tea.LogToFile(filepath.Join(os.TempDir(), playLogFile), "")
				if err != nil {
					return err
				}
				defer f.Close()
			}

			d, err := loadData(cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := cfg.validateCommon(d); err != nil {
				return err
			}

			return tui.Run(cmd.Context(), tui.Options{
				Roster:     d.roster,
				Text:       d.text,
				Mode:       cfg.mode,
				Lang:       cfg.lang,
				Exclusions: cfg.exclude,
				Tick:       cfg.tick,
				Logf: func(format string, args ...any) {
					logf(cfg, format, args...)
				},
			})
		},
	}

	fs := cmd.Flags()

	fs.StringVarP(&cfg.mode, "mode", "m", roster.ModeAll, "category to play: all, game:<id>, first-game:<id>, tribe:<id>, rank:<id> or type:<id> (env: YOKAIQUIZ_MODE)")

	bindEnv(v, fs)

	return cmd
}
