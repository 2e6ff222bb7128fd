package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/GPTx-global/bandfeed/oracle/log"
	"github.com/GPTx-global/bandfeed/oracle/types"
)

const (
	FileName  = "config.toml"
	EnvPrefix = "BANDFEED"

	DefaultEndpoint       = "http://guanyu-devnet.bandchain.org/rest"
	DefaultTimeout        = "30s"
	DefaultOracleScriptID = 1
	DefaultCalldata       = "0000000442414e4400000000000f4240"
	DefaultMinCount       = 4
	DefaultAskCount       = 4
	DefaultLogLevel       = "info"
)

// viper keys, also used as flag bindings
const (
	KeyEndpoint       = "band.endpoint"
	KeyTimeout        = "band.timeout"
	KeyOracleScriptID = "request.oracle_script_id"
	KeyCalldata       = "request.calldata"
	KeyMinCount       = "request.min_count"
	KeyAskCount       = "request.ask_count"
	KeyLogLevel       = "log.level"
	KeyLogToFile      = "log.to_file"
)

type Config struct {
	Band    BandConfig    `toml:"band"`
	Request RequestConfig `toml:"request"`
	Log     LogConfig     `toml:"log"`
}

type BandConfig struct {
	Endpoint string `toml:"endpoint"`
	Timeout  string `toml:"timeout"`
}

type RequestConfig struct {
	OracleScriptID uint64 `toml:"oracle_script_id"`
	Calldata       string `toml:"calldata"`
	MinCount       uint64 `toml:"min_count"`
	AskCount       uint64 `toml:"ask_count"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	ToFile bool   `toml:"to_file"`
}

// Default is the configuration written on first run. Its request section
// asks for the BAND/USD price with a 10^6 multiplier.
func Default() Config {
	return Config{
		Band: BandConfig{
			Endpoint: DefaultEndpoint,
			Timeout:  DefaultTimeout,
		},
		Request: RequestConfig{
			OracleScriptID: DefaultOracleScriptID,
			Calldata:       DefaultCalldata,
			MinCount:       DefaultMinCount,
			AskCount:       DefaultAskCount,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			ToFile: false,
		},
	}
}

// DefaultHome is ~/.bandfeed.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bandfeed"
	}

	return filepath.Join(home, ".bandfeed")
}

// Load reads <home>/config.toml through v, creating it with defaults when
// absent. Flags bound to v and BANDFEED_* variables take precedence.
func Load(v *viper.Viper, home string) (Config, error) {
	path := filepath.Join(home, FileName)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := WriteDefault(path); err != nil {
			return Config{}, fmt.Errorf("failed to create default config: %w", err)
		}
		log.Infof("Created default config at %s", path)
	}

	setDefaults(v)
	BindEnv(v)
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := fromViper(v)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	log.Debugf("Loaded config from %s", path)
	return cfg, nil
}

// BindEnv lets BANDFEED_* variables override the keys of v, e.g.
// BANDFEED_LOG_LEVEL for log.level.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault(KeyEndpoint, def.Band.Endpoint)
	v.SetDefault(KeyTimeout, def.Band.Timeout)
	v.SetDefault(KeyOracleScriptID, def.Request.OracleScriptID)
	v.SetDefault(KeyCalldata, def.Request.Calldata)
	v.SetDefault(KeyMinCount, def.Request.MinCount)
	v.SetDefault(KeyAskCount, def.Request.AskCount)
	v.SetDefault(KeyLogLevel, def.Log.Level)
	v.SetDefault(KeyLogToFile, def.Log.ToFile)
}

// fromViper reads every key through cast so that negative or non-numeric
// values are rejected instead of wrapped around.
func fromViper(v *viper.Viper) (Config, error) {
	var (
		cfg Config
		err error
	)

	cfg.Band.Endpoint = v.GetString(KeyEndpoint)
	cfg.Band.Timeout = v.GetString(KeyTimeout)
	cfg.Request.Calldata = v.GetString(KeyCalldata)
	cfg.Log.Level = v.GetString(KeyLogLevel)

	if cfg.Log.ToFile, err = cast.ToBoolE(v.Get(KeyLogToFile)); err != nil {
		return Config{}, errorsmod.Wrapf(types.ErrInvalidParams, "%s: %v", KeyLogToFile, err)
	}

	for key, dst := range map[string]*uint64{
		KeyOracleScriptID: &cfg.Request.OracleScriptID,
		KeyMinCount:       &cfg.Request.MinCount,
		KeyAskCount:       &cfg.Request.AskCount,
	} {
		if *dst, err = cast.ToUint64E(v.Get(key)); err != nil {
			return Config{}, errorsmod.Wrapf(types.ErrInvalidParams, "%s: %v", key, err)
		}
	}

	return cfg, nil
}

// WriteDefault marshals Default into path, creating parent directories.
func WriteDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal TOML: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Timeout parses band.timeout; "0" disables the client timeout.
func (c Config) Timeout() (time.Duration, error) {
	d, err := cast.ToDurationE(c.Band.Timeout)
	if err != nil {
		return 0, errorsmod.Wrapf(types.ErrInvalidParams, "%s: %v", KeyTimeout, err)
	}

	if d < 0 {
		return 0, errorsmod.Wrapf(types.ErrInvalidParams, "%s must not be negative", KeyTimeout)
	}

	return d, nil
}

func (c Config) Validate() error {
	if c.Band.Endpoint == "" {
		return errorsmod.Wrap(types.ErrInvalidParams, "band endpoint is required")
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}

	if c.Request.OracleScriptID == 0 {
		return errorsmod.Wrap(types.ErrInvalidParams, "oracle script id is required")
	}

	if _, err := hex.DecodeString(c.Request.Calldata); err != nil {
		return errorsmod.Wrapf(types.ErrInvalidParams, "calldata is not hex: %v", err)
	}

	if c.Request.MinCount == 0 {
		return errorsmod.Wrap(types.ErrInvalidParams, "min count is required")
	}

	if c.Request.MinCount > c.Request.AskCount {
		return errorsmod.Wrapf(types.ErrInvalidParams, "min count %d exceeds ask count %d", c.Request.MinCount, c.Request.AskCount)
	}

	switch c.Log.Level {
	case "debug", "info", "error", "none":
	default:
		return errorsmod.Wrapf(types.ErrInvalidParams, "unknown log level %q", c.Log.Level)
	}

	return nil
}

func (c Config) Print() {
	log.Infof("%-16s: %s", "Endpoint", c.Band.Endpoint)
	log.Infof("%-16s: %s", "Timeout", c.Band.Timeout)
	log.Infof("%-16s: %d", "Oracle Script ID", c.Request.OracleScriptID)
	log.Infof("%-16s: %s", "Calldata", c.Request.Calldata)
	log.Infof("%-16s: %d", "Min Count", c.Request.MinCount)
	log.Infof("%-16s: %d", "Ask Count", c.Request.AskCount)
	log.Infof("%-16s: %s", "Log Level", c.Log.Level)
}
