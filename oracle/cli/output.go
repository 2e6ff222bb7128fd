package cli

import (
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/GPTx-global/bandfeed/oracle/types"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func outputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString(FlagOutput)
	if err != nil {
		return "", err
	}

	switch format {
	case outputText, outputJSON, outputYAML:
		return format, nil
	default:
		return "", errorsmod.Wrapf(types.ErrInvalidParams, "unknown output format %q", format)
	}
}

// printOutput writes v as json or yaml; text output is left to the caller.
func printOutput(cmd *cobra.Command, format string, v any) error {
	var (
		out []byte
		err error
	)

	switch format {
	case outputJSON:
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	case outputYAML:
		out, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("output format %q is not structured", format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}
