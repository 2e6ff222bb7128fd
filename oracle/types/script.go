package types

import (
	"encoding/json"
)

// OracleScript is the gateway answer for /oracle/oracle_scripts/{id}.
type OracleScript struct {
	Height string             `json:"height"`
	Result OracleScriptResult `json:"result"`
}

// OracleScriptResult holds the registered metadata of an oracle script.
type OracleScriptResult struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Filename      string `json:"filename"`
	Schema        string `json:"schema"`
	SourceCodeURL string `json:"source_code_url"`
}

// ParseOracleScript decodes an oracle script body. Every field is required.
func ParseOracleScript(body []byte) (OracleScript, error) {
	var script OracleScript
	if err := json.Unmarshal(body, &script); err != nil {
		return OracleScript{}, wrapDecode(err, "oracle script")
	}

	if err := requireFields(body, "oracle script", oracleScriptFields); err != nil {
		return OracleScript{}, err
	}

	return script, nil
}
