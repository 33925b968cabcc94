package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the quadgrid CLI.
// Every flag is also settable through a QUADGRID_* environment
// variable, with dashes mapped to underscores.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	v := viper.New()
	v.SetEnvPrefix("QUADGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "quadgrid",
		Short: "quadgrid - daily word-grouping puzzle toolkit",
		Long: `Sync daily word-grouping puzzles to a local cache, resolve the
best available date, and serve cached puzzles with a playable session API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			bindEnv(v, cmd.Flags())
			bindEnv(v, cmd.InheritedFlags())
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (env: QUADGRID_VERBOSE)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text) (env: QUADGRID_FORMAT)")

	cmd.PersistentFlags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// bindEnv overlays environment values onto unset flags.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
