package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openfluke/convfield/nn"
)

const envPrefix = "CONVFIELD"

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:          "convfield",
		Short:        "Inspect 1-D convolution stacks: lengths, receptive and projective fields",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, v)
		},
	}

	pf := root.PersistentFlags()
	pf.String("settings", "", "settings file (default ./convfield.yaml)")
	pf.String("fragment", "", "network fragment, e.g. 32~0,30,3,1,1,0,0")
	pf.String("config", "", "network document (.json, .yaml or .yml)")
	pf.Int("input-dim", 0, "override the network input length")
	pf.Bool("gpu", false, "propagate fields with WebGPU")
	pf.String("log-level", "warn", "debug, info, warn or error")

	for key, flag := range map[string]string{
		"settings":  "settings",
		"fragment":  "fragment",
		"config":    "config",
		"input_dim": "input-dim",
		"gpu":       "gpu",
		"log_level": "log-level",
	} {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		newResolveCmd(v),
		newFieldCmd(v),
		newDescribeCmd(v),
		newPathsCmd(v),
		newEncodeCmd(v),
		newDecodeCmd(v),
	)
	return root
}

// initConfig reads the optional settings file and installs the logger
func initConfig(cmd *cobra.Command, v *viper.Viper) error {
	explicit := v.GetString("settings")
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("convfield")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read settings: %w", err)
		}
	}

	level, err := parseLevel(v.GetString("log_level"))
	if err != nil {
		return err
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	nn.SetLogger(slog.New(handler))
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// loadNetwork picks the network from --fragment, --config or the default
func loadNetwork(v *viper.Viper) (*nn.Network, error) {
	fragment := v.GetString("fragment")
	config := v.GetString("config")

	var net *nn.Network
	var err error
	switch {
	case fragment != "" && config != "":
		return nil, errors.New("--fragment and --config are mutually exclusive")
	case fragment != "":
		net, err = nn.DecodeFragment(fragment)
	case config != "":
		net, err = nn.LoadNetwork(config)
	default:
		net = nn.DefaultNetwork()
	}
	if err != nil {
		return nil, err
	}

	// IsSet ignores flag defaults, so an explicit 0 still applies
	if v.IsSet("input_dim") {
		net.SetInputDim(v.GetInt("input_dim"))
	}
	return net, nil
}

// newSession wraps the selected network, switching to the GPU if asked
func newSession(v *viper.Viper) (*nn.Session, error) {
	net, err := loadNetwork(v)
	if err != nil {
		return nil, err
	}
	s := nn.NewSession(net)
	if v.GetBool("gpu") {
		// Unavailable adapters are logged and the CPU path is kept
		_ = s.UseGPU(true)
	}
	return s, nil
}
