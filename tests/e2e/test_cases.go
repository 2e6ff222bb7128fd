package e2e

import (
	"github.com/GPTx-global/bandfeed/oracle/testutil"
	"github.com/GPTx-global/bandfeed/oracle/types"
)

type TestCase struct {
	Name     string                  // test case
	Args     []string                // bandfeed arguments, endpoint and home are appended
	Mock     func(*testutil.Gateway) // gateway setup before running
	ExpPass  bool                    // should pass or not?
	ExpErr   error                   // expected error kind (only if ExpPass == false)
	Expected string                  // expected stdout (only if ExpPass == true)
	Contains []string                // substrings expected in stdout
}

var TestCases []TestCase

func AddTestCase(testCase *TestCase) {
	if testCase.Mock == nil {
		testCase.Mock = func(*testutil.Gateway) {}
	}
	TestCases = append(TestCases, *testCase)
}

func init() {
	AddTestCase(&TestCase{
		Name:     "default price query",
		ExpPass:  true,
		Expected: "4190000\n",
	})
	AddTestCase(&TestCase{
		Name:     "explicit default params",
		Args:     []string{"price", "--oid", "1", "--calldata", testutil.DefaultCalldata, "--min-count", "4", "--ask-count", "4"},
		ExpPass:  true,
		Expected: "4190000\n",
	})
	AddTestCase(&TestCase{
		Name:     "price as json",
		Args:     []string{"price", "-o", "json"},
		ExpPass:  true,
		Contains: []string{`"px": 4190000`, `"symbol": "BAND"`, `"value": "4.190000000000000000"`},
	})
	AddTestCase(&TestCase{
		Name:     "oracle script",
		Args:     []string{"script", "1"},
		ExpPass:  true,
		Contains: []string{"Crypto price script (Band)"},
	})
	AddTestCase(&TestCase{
		Name:     "request record",
		Args:     []string{"request", "-o", "yaml"},
		ExpPass:  true,
		Contains: []string{"request_id: \"115289\"", "in_before_resolve: true"},
	})
	AddTestCase(&TestCase{
		Name:    "truncated obi result",
		Mock:    func(g *testutil.Gateway) { g.SetRequestSearch(testutil.WithResult(testutil.RequestSearchJSON, "AAA/")) },
		ExpErr:  types.ErrBinaryDecode,
		ExpPass: false,
	})
	AddTestCase(&TestCase{
		Name:    "malformed body",
		Mock:    func(g *testutil.Gateway) { g.SetRequestSearch([]byte("not json")) },
		ExpErr:  types.ErrDecode,
		ExpPass: false,
	})
	AddTestCase(&TestCase{
		Name:    "empty request body",
		Mock:    func(g *testutil.Gateway) { g.SetRequestSearch([]byte(`{}`)) },
		ExpErr:  types.ErrDecode,
		ExpPass: false,
	})
	AddTestCase(&TestCase{
		Name:    "oracle script error object",
		Args:    []string{"script", "1"},
		Mock:    func(g *testutil.Gateway) { g.SetOracleScript("1", []byte(`{"error":"oracle script not found"}`)) },
		ExpErr:  types.ErrDecode,
		ExpPass: false,
	})
	AddTestCase(&TestCase{
		Name:    "gateway failure",
		Mock:    func(g *testutil.Gateway) { g.SetStatus(500) },
		ExpErr:  types.ErrHTTPStatus,
		ExpPass: false,
	})
	AddTestCase(&TestCase{
		Name:    "unknown oracle script",
		Args:    []string{"script", "404"},
		ExpErr:  types.ErrHTTPStatus,
		ExpPass: false,
	})
	AddTestCase(&TestCase{
		Name:    "min count above ask count",
		Args:    []string{"price", "--min-count", "5"},
		ExpErr:  types.ErrInvalidParams,
		ExpPass: false,
	})
}
