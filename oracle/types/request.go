package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ResolveStatus is the terminal state of an oracle request.
type ResolveStatus uint64

const (
	ResolveStatusOpen ResolveStatus = iota
	ResolveStatusSuccess
	ResolveStatusFailure
	ResolveStatusExpired
)

func (s ResolveStatus) String() string {
	switch s {
	case ResolveStatusOpen:
		return "open"
	case ResolveStatusSuccess:
		return "success"
	case ResolveStatusFailure:
		return "failure"
	case ResolveStatusExpired:
		return "expired"
	default:
		return fmt.Sprintf("unknown(%d)", uint64(s))
	}
}

// RequestResult is the gateway answer for /oracle/request_search.
type RequestResult struct {
	Height Uint64 `json:"height"`
	Result Res    `json:"result"`
}

type Res struct {
	Request Req      `json:"request"`
	Reports []Report `json:"reports"`
	Result  Packet   `json:"result"`
}

// Req echoes the parameters the request was created with.
type Req struct {
	OracleScriptID      Uint64       `json:"oracle_script_id"`
	Calldata            []byte       `json:"calldata"`
	RequestedValidators []string     `json:"requested_validators"`
	MinCount            Uint64       `json:"min_count"`
	RequestHeight       Uint64       `json:"request_height"`
	RequestTime         string       `json:"request_time"`
	ClientID            string       `json:"client_id"`
	RawRequests         []RawRequest `json:"raw_requests"`
}

type RawRequest struct {
	ExternalID   Uint64 `json:"external_id"`
	DataSourceID Uint64 `json:"data_source_id"`
	Calldata     []byte `json:"calldata"`
}

// Report is one validator's attestation.
type Report struct {
	Validator       string      `json:"validator"`
	InBeforeResolve bool        `json:"in_before_resolve"`
	RawReports      []RawReport `json:"raw_reports"`
}

type RawReport struct {
	ExternalID Uint64 `json:"external_id"`
	Data       string `json:"data"`
}

type Packet struct {
	RequestPacketData  RequestPacketData  `json:"RequestPacketData"`
	ResponsePacketData ResponsePacketData `json:"ResponsePacketData"`
}

type RequestPacketData struct {
	ClientID       string `json:"client_id"`
	OracleScriptID Uint64 `json:"oracle_script_id"`
	Calldata       []byte `json:"calldata"`
	AskCount       Uint64 `json:"ask_count"`
	MinCount       Uint64 `json:"min_count"`
}

// ResponsePacketData carries the resolved outcome; Result is the OBI payload.
type ResponsePacketData struct {
	ClientID      string        `json:"client_id"`
	RequestID     Uint64        `json:"request_id"`
	AnsCount      Uint64        `json:"ans_count"`
	RequestTime   Uint64        `json:"request_time"`
	ResolveTime   Uint64        `json:"resolve_time"`
	ResolveStatus ResolveStatus `json:"resolve_status"`
	Result        []byte        `json:"result"`
}

// ParseRequestResult decodes a request_search body. Integer strings and
// base64 fields are coerced during decoding; any mismatch or absent field
// is ErrDecode.
func ParseRequestResult(body []byte) (RequestResult, error) {
	var res RequestResult
	if err := json.Unmarshal(body, &res); err != nil {
		if errors.Is(err, ErrDecode) {
			return RequestResult{}, err
		}

		return RequestResult{}, wrapDecode(err, "request result")
	}

	if err := requireFields(body, "request result", requestResultFields); err != nil {
		return RequestResult{}, err
	}

	return res, nil
}

// Price decodes the response payload of a resolved request.
func (r RequestResult) Price() (Price, error) {
	resp := r.Result.Result.ResponsePacketData

	price, err := DecodePrice(resp.Result)
	if err != nil && resp.ResolveStatus != ResolveStatusSuccess {
		return Price{}, fmt.Errorf("request %d resolved as %s: %w", resp.RequestID, resp.ResolveStatus, err)
	}

	return price, err
}
