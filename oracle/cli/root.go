package cli

import (
	"context"
	"fmt"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/armon/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/GPTx-global/bandfeed/oracle/config"
	"github.com/GPTx-global/bandfeed/oracle/fetcher"
	"github.com/GPTx-global/bandfeed/oracle/log"
	"github.com/GPTx-global/bandfeed/oracle/types"
)

const (
	FlagHome           = "home"
	FlagEndpoint       = "endpoint"
	FlagTimeout        = "timeout"
	FlagLogLevel       = "log-level"
	FlagOutput         = "output"
	FlagOracleScriptID = "oid"
	FlagCalldata       = "calldata"
	FlagMinCount       = "min-count"
	FlagAskCount       = "ask-count"
	FlagSymbol         = "symbol"
	FlagMultiplier     = "multiplier"

	defaultMultiplier = 1000000
)

// flagKeys binds persistent flags to config keys.
var flagKeys = map[string]string{
	FlagEndpoint:       config.KeyEndpoint,
	FlagTimeout:        config.KeyTimeout,
	FlagLogLevel:       config.KeyLogLevel,
	FlagOracleScriptID: config.KeyOracleScriptID,
	FlagCalldata:       config.KeyCalldata,
	FlagMinCount:       config.KeyMinCount,
	FlagAskCount:       config.KeyAskCount,
}

// appContext is what the query commands share once the root has run its
// pre-run hook.
type appContext struct {
	viper   *viper.Viper
	config  config.Config
	sink    *metrics.InmemSink
	metrics *metrics.Metrics
}

// NewRootCmd builds the bandfeed command tree. Without a subcommand it
// behaves like `bandfeed price`.
func NewRootCmd() *cobra.Command {
	app := &appContext{viper: viper.New()}

	cmd := &cobra.Command{
		Use:   "bandfeed",
		Short: "Fetch resolved oracle data from a BandChain REST gateway",
		Long: `bandfeed looks up the latest resolved BandChain oracle request matching an
oracle script, its calldata and the validator counts, and decodes the OBI
encoded price it carries.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.preRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPrice(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(FlagHome, config.DefaultHome(), "directory holding config.toml and logs")
	flags.String(FlagEndpoint, config.DefaultEndpoint, "BandChain REST gateway base URI")
	flags.String(FlagTimeout, config.DefaultTimeout, "per request timeout, 0 to disable")
	flags.String(FlagLogLevel, config.DefaultLogLevel, "log level (debug|info|error|none)")
	flags.StringP(FlagOutput, "o", outputText, "output format (text|json|yaml)")
	flags.Uint64(FlagOracleScriptID, config.DefaultOracleScriptID, "oracle script id")
	flags.String(FlagCalldata, config.DefaultCalldata, "hex encoded calldata")
	flags.Uint64(FlagMinCount, config.DefaultMinCount, "minimum number of reports")
	flags.Uint64(FlagAskCount, config.DefaultAskCount, "number of validators asked")
	flags.String(FlagSymbol, "", "build calldata from this symbol instead of --calldata")
	flags.Uint64(FlagMultiplier, defaultMultiplier, "multiplier paired with --symbol")

	cmd.AddCommand(
		GetCmdQueryPrice(app),
		GetCmdQueryOracleScript(app),
		GetCmdQueryRequest(app),
		GetCmdCalldata(),
	)

	return cmd
}

// Execute runs cmd and reports a failure on its standard output, next to
// where a successful result would have been printed.
func Execute(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Error (%s): %+v\n", types.ErrorKind(err), err)
	}

	return err
}

func (app *appContext) preRun(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(app.viper, cmd.Flags()); err != nil {
		return err
	}

	home, err := cmd.Flags().GetString(FlagHome)
	if err != nil {
		return err
	}

	if _, err := outputFormat(cmd); err != nil {
		return err
	}

	// The flag or env level already covers what Load logs; an invalid one
	// is reported once the config is validated.
	config.BindEnv(app.viper)
	_ = log.SetLevel(app.viper.GetString(config.KeyLogLevel))

	cfg, err := config.Load(app.viper, home)
	if err != nil {
		return err
	}

	if err := log.SetLevel(cfg.Log.Level); err != nil {
		return errorsmod.Wrap(types.ErrInvalidParams, err.Error())
	}

	if cfg.Log.ToFile {
		if err := log.ResetLogger(home); err != nil {
			return err
		}
	}

	if cmd.Flags().Changed(FlagSymbol) {
		symbol, _ := cmd.Flags().GetString(FlagSymbol)
		multiplier, _ := cmd.Flags().GetUint64(FlagMultiplier)

		if cfg.Request.Calldata, err = types.EncodeCalldata(symbol, multiplier); err != nil {
			return err
		}
	}

	cfg.Print()
	app.config = cfg

	return app.initMetrics()
}

// bindFlags makes explicitly set flags win over the config file.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}

	return nil
}

// initMetrics keeps fetch metrics in memory; they are logged at debug
// level once the command is done.
func (app *appContext) initMetrics() error {
	conf := metrics.DefaultConfig("bandfeed")
	conf.EnableHostname = false
	conf.EnableRuntimeMetrics = false

	app.sink = metrics.NewInmemSink(time.Minute, time.Minute)

	m, err := metrics.New(conf, app.sink)
	if err != nil {
		return fmt.Errorf("failed to init metrics: %w", err)
	}
	app.metrics = m

	return nil
}

func (app *appContext) newFetcher(oracleScriptID uint64) (*fetcher.Fetcher, error) {
	timeout, err := app.config.Timeout()
	if err != nil {
		return nil, err
	}

	return fetcher.New(
		app.config.Band.Endpoint,
		fetcher.Params{
			OracleScriptID: oracleScriptID,
			Calldata:       app.config.Request.Calldata,
			MinCount:       app.config.Request.MinCount,
			AskCount:       app.config.Request.AskCount,
		},
		fetcher.WithTimeout(timeout),
		fetcher.WithMetrics(app.metrics),
	)
}

func (app *appContext) logMetrics() {
	if app.sink == nil {
		return
	}

	for _, interval := range app.sink.Data() {
		for name, counter := range interval.Counters {
			log.Debugf("metric %s: count=%d", name, counter.Count)
		}
		for name, sample := range interval.Samples {
			log.Debugf("metric %s: count=%d mean=%.2fms", name, sample.Count, sample.Mean)
		}
	}
}
