package types

import (
	"encoding/json"
	"strconv"
)

// Uint64 is an unsigned integer that travels as a decimal JSON string,
// the way the cosmos REST gateway encodes 64-bit numbers.
type Uint64 uint64

func (u *Uint64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return wrapDecode(err, "integer must be a json string")
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return wrapDecode(err, "integer string")
	}

	*u = Uint64(v)
	return nil
}

func (u Uint64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(u), 10))
}

func (u Uint64) String() string {
	return strconv.FormatUint(uint64(u), 10)
}
