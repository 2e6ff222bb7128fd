package cli

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/GPTx-global/bandfeed/oracle/log"
	"github.com/GPTx-global/bandfeed/oracle/types"
)

// PriceOutput is the structured form of `bandfeed price`.
type PriceOutput struct {
	RequestID      types.Uint64 `json:"request_id"`
	OracleScriptID types.Uint64 `json:"oracle_script_id"`
	Symbol         string       `json:"symbol,omitempty"`
	Multiplier     uint64       `json:"multiplier,omitempty"`
	Px             uint64       `json:"px"`
	Value          string       `json:"value,omitempty"`
	ResolveStatus  string       `json:"resolve_status"`
	ResolveTime    types.Uint64 `json:"resolve_time"`
}

// GetCmdQueryPrice returns the latest resolved price for the configured request.
func GetCmdQueryPrice(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "price",
		Short: "Query the latest resolved price",
		Example: `bandfeed price
bandfeed price --symbol ETH --multiplier 1000000 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runPrice(cmd)
		},
	}
}

func (app *appContext) runPrice(cmd *cobra.Command) error {
	defer app.logMetrics()

	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	f, err := app.newFetcher(app.config.Request.OracleScriptID)
	if err != nil {
		return err
	}

	if format == outputText {
		px, err := f.RequestData(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), px)
		return nil
	}

	res, price, err := f.RequestPrice(cmd.Context())
	if err != nil {
		return err
	}

	resp := res.Result.Result.ResponsePacketData
	out := PriceOutput{
		RequestID:      resp.RequestID,
		OracleScriptID: res.Result.Result.RequestPacketData.OracleScriptID,
		Px:             price.Px,
		ResolveStatus:  resp.ResolveStatus.String(),
		ResolveTime:    resp.ResolveTime,
	}

	// Scripts other than the price feeds take different calldata.
	calldata, err := types.DecodeCalldata(res.Result.Result.RequestPacketData.Calldata)
	if err != nil {
		log.Debugf("calldata of request %d is not symbol/multiplier: %v", resp.RequestID, err)
	} else {
		out.Symbol = calldata.Symbol
		out.Multiplier = calldata.Multiplier

		if value, err := price.Value(calldata.Multiplier); err == nil {
			out.Value = value.String()
		}
	}

	return printOutput(cmd, format, out)
}

// GetCmdQueryOracleScript returns the metadata of an oracle script.
func GetCmdQueryOracleScript(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "script [id]",
		Short: "Query oracle script metadata, by default the configured one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer app.logMetrics()

			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			id := app.config.Request.OracleScriptID
			if len(args) == 1 {
				if id, err = cast.ToUint64E(args[0]); err != nil {
					return fmt.Errorf("invalid oracle script id %q: %w", args[0], err)
				}
			}

			f, err := app.newFetcher(id)
			if err != nil {
				return err
			}

			script, err := f.OracleScript(cmd.Context())
			if err != nil {
				return err
			}

			if format != outputText {
				return printOutput(cmd, format, script)
			}

			res, w := script.Result, cmd.OutOrStdout()
			fmt.Fprintf(w, "name:        %s\n", res.Name)
			fmt.Fprintf(w, "description: %s\n", res.Description)
			fmt.Fprintf(w, "owner:       %s\n", res.Owner)
			fmt.Fprintf(w, "filename:    %s\n", res.Filename)
			fmt.Fprintf(w, "schema:      %s\n", res.Schema)
			fmt.Fprintf(w, "source code: %s\n", res.SourceCodeURL)
			fmt.Fprintf(w, "height:      %s\n", script.Height)
			return nil
		},
	}
}

// GetCmdQueryRequest returns the whole latest resolved request record.
func GetCmdQueryRequest(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "request",
		Short: "Query the latest resolved request with its reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer app.logMetrics()

			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			f, err := app.newFetcher(app.config.Request.OracleScriptID)
			if err != nil {
				return err
			}

			res, err := f.Request(cmd.Context())
			if err != nil {
				return err
			}

			if format != outputText {
				return printOutput(cmd, format, res)
			}

			dumper := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
			dumper.Fdump(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

// GetCmdCalldata prints the hex calldata for a symbol and multiplier. It
// works offline and skips loading the config.
func GetCmdCalldata() *cobra.Command {
	return &cobra.Command{
		Use:     "calldata [symbol] [multiplier]",
		Short:   "Encode price calldata as hex",
		Example: "bandfeed calldata BAND 1000000",
		Args:    cobra.ExactArgs(2),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			multiplier, err := cast.ToUint64E(args[1])
			if err != nil {
				return fmt.Errorf("invalid multiplier %q: %w", args[1], err)
			}

			calldata, err := types.EncodeCalldata(args[0], multiplier)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), calldata)
			return nil
		},
	}
}
