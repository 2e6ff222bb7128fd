package types

import (
	"fmt"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/tidwall/gjson"
)

// A "#" segment applies the rest of the path to every array element.
var (
	oracleScriptFields = []string{
		"height",
		"result.owner",
		"result.name",
		"result.description",
		"result.filename",
		"result.schema",
		"result.source_code_url",
	}

	requestResultFields = []string{
		"height",
		"result.request.oracle_script_id",
		"result.request.calldata",
		"result.request.requested_validators",
		"result.request.min_count",
		"result.request.request_height",
		"result.request.request_time",
		"result.request.client_id",
		"result.request.raw_requests.#.external_id",
		"result.request.raw_requests.#.data_source_id",
		"result.request.raw_requests.#.calldata",
		"result.reports.#.validator",
		"result.reports.#.in_before_resolve",
		"result.reports.#.raw_reports.#.external_id",
		"result.reports.#.raw_reports.#.data",
		"result.result.RequestPacketData.client_id",
		"result.result.RequestPacketData.oracle_script_id",
		"result.result.RequestPacketData.calldata",
		"result.result.RequestPacketData.ask_count",
		"result.result.RequestPacketData.min_count",
		"result.result.ResponsePacketData.client_id",
		"result.result.ResponsePacketData.request_id",
		"result.result.ResponsePacketData.ans_count",
		"result.result.ResponsePacketData.request_time",
		"result.result.ResponsePacketData.resolve_time",
		"result.result.ResponsePacketData.resolve_status",
		"result.result.ResponsePacketData.result",
	}
)

// requireFields fails with ErrDecode naming the first path absent from body.
func requireFields(body []byte, what string, paths []string) error {
	root := gjson.ParseBytes(body)

	for _, path := range paths {
		if at, ok := lookup(root, strings.Split(path, "."), ""); !ok {
			return errorsmod.Wrapf(ErrDecode, "%s: missing field %s", what, at)
		}
	}

	return nil
}

func lookup(value gjson.Result, segs []string, at string) (string, bool) {
	if len(segs) == 0 {
		return at, true
	}

	if segs[0] == "#" {
		if !value.IsArray() {
			return at, false
		}

		for i, elem := range value.Array() {
			if missing, ok := lookup(elem, segs[1:], fmt.Sprintf("%s.%d", at, i)); !ok {
				return missing, false
			}
		}

		return at, true
	}

	if at != "" {
		at += "."
	}
	at += segs[0]

	next := value.Get(segs[0])
	if !next.Exists() {
		return at, false
	}

	return lookup(next, segs[1:], at)
}
