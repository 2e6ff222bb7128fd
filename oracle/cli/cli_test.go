package cli_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"sigs.k8s.io/yaml"

	"github.com/GPTx-global/bandfeed/oracle/cli"
	"github.com/GPTx-global/bandfeed/oracle/config"
	"github.com/GPTx-global/bandfeed/oracle/log"
	"github.com/GPTx-global/bandfeed/oracle/testutil"
	"github.com/GPTx-global/bandfeed/oracle/types"
)

type CLITestSuite struct {
	suite.Suite
	gateway *testutil.Gateway
	home    string
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (suite *CLITestSuite) SetupTest() {
	log.InitLogger()
	log.SetOutput(io.Discard)

	suite.gateway = testutil.NewGateway()
	suite.home = suite.T().TempDir()
}

func (suite *CLITestSuite) TearDownTest() {
	suite.gateway.Close()
	log.InitLogger()
}

func (suite *CLITestSuite) execute(args ...string) (string, error) {
	return suite.executeAt("none", args...)
}

func (suite *CLITestSuite) executeAt(level string, args ...string) (string, error) {
	cmd := cli.NewRootCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args,
		"--home", suite.home,
		"--endpoint", suite.gateway.Endpoint(),
		"--log-level", level,
	))

	err := cli.Execute(context.Background(), cmd)
	return out.String(), err
}

func (suite *CLITestSuite) TestPrice_Text() {
	for _, args := range [][]string{{}, {"price"}} {
		out, err := suite.execute(args...)
		suite.Require().NoError(err)
		suite.Equal("4190000\n", out)
	}

	query := suite.gateway.LastQuery()
	suite.Equal("1", query.Get("oid"))
	suite.Equal(testutil.DefaultCalldata, query.Get("calldata"))
}

func (suite *CLITestSuite) TestPrice_JSON() {
	out, err := suite.execute("price", "-o", "json")
	suite.Require().NoError(err)

	suite.True(gjson.Valid(out))
	suite.Equal("115289", gjson.Get(out, "request_id").String())
	suite.Equal(testutil.FixturePx, gjson.Get(out, "px").Uint())
	suite.Equal("BAND", gjson.Get(out, "symbol").String())
	suite.Equal(uint64(1000000), gjson.Get(out, "multiplier").Uint())
	suite.Equal("4.190000000000000000", gjson.Get(out, "value").String())
	suite.Equal("success", gjson.Get(out, "resolve_status").String())
}

func (suite *CLITestSuite) TestPrice_YAML() {
	out, err := suite.execute("price", "--output", "yaml")
	suite.Require().NoError(err)

	var price cli.PriceOutput
	suite.Require().NoError(yaml.Unmarshal([]byte(out), &price))
	suite.Equal(testutil.FixturePx, price.Px)
	suite.Equal(types.Uint64(115289), price.RequestID)
}

func (suite *CLITestSuite) TestPrice_Flags() {
	_, err := suite.execute("price", "--oid", "8", "--min-count", "3", "--ask-count", "16", "--symbol", "ETH", "--multiplier", "100")
	suite.Require().NoError(err)

	calldata, err := types.EncodeCalldata("ETH", 100)
	suite.Require().NoError(err)

	query := suite.gateway.LastQuery()
	suite.Equal("8", query.Get("oid"))
	suite.Equal(calldata, query.Get("calldata"))
	suite.Equal("3", query.Get("min_count"))
	suite.Equal("16", query.Get("ask_count"))
}

func (suite *CLITestSuite) TestPrice_Errors() {
	suite.gateway.SetRequestSearch(testutil.WithResult(testutil.RequestSearchJSON, "AAA/"))
	_, err := suite.execute("price")
	suite.ErrorIs(err, types.ErrBinaryDecode)

	suite.gateway.SetStatus(http.StatusBadGateway)
	_, err = suite.execute("price")
	suite.ErrorIs(err, types.ErrHTTPStatus)

	_, err = suite.execute("price", "--min-count", "5")
	suite.ErrorIs(err, types.ErrInvalidParams)

	_, err = suite.execute("price", "-o", "xml")
	suite.ErrorIs(err, types.ErrInvalidParams)
}

func (suite *CLITestSuite) TestScript() {
	out, err := suite.execute("script")
	suite.Require().NoError(err)
	suite.Contains(out, "name:        Crypto price script (Band)")
	suite.Contains(out, "schema:      {symbol:string,multiplier:u64}/{px:u64}")

	out, err = suite.execute("script", "1", "-o", "json")
	suite.Require().NoError(err)
	suite.Equal("2814720", gjson.Get(out, "height").String())

	_, err = suite.execute("script", "42")
	suite.ErrorIs(err, types.ErrHTTPStatus)

	_, err = suite.execute("script", "x")
	suite.Error(err)
}

func (suite *CLITestSuite) TestRequest() {
	out, err := suite.execute("request")
	suite.Require().NoError(err)
	suite.Contains(out, "RequestID")
	suite.Contains(out, "115289")

	out, err = suite.execute("request", "-o", "json")
	suite.Require().NoError(err)
	suite.Equal("AAAAAAA/7zA=", gjson.Get(out, testutil.ResultPath).String())
	suite.Equal("2814725", gjson.Get(out, "height").String())
}

func (suite *CLITestSuite) TestCalldata() {
	out, err := suite.execute("calldata", "BAND", "1000000")
	suite.Require().NoError(err)
	suite.Equal(testutil.DefaultCalldata, strings.TrimSpace(out))
	suite.Zero(suite.gateway.Hits())

	_, err = suite.execute("calldata", "BAND", "-1")
	suite.Error(err)
}

func (suite *CLITestSuite) TestExecute_ErrorOnStdout() {
	suite.gateway.SetStatus(http.StatusBadGateway)

	out, err := suite.execute("price")
	suite.Require().ErrorIs(err, types.ErrHTTPStatus)
	suite.True(strings.HasPrefix(out, "Error (http_status): "), out)
	suite.Contains(out, err.Error())
	suite.NotContains(out, "4190000")

	suite.gateway.SetRequestSearch([]byte(`{}`))
	suite.gateway.SetStatus(http.StatusOK)

	out, err = suite.execute("price")
	suite.Require().ErrorIs(err, types.ErrDecode)
	suite.True(strings.HasPrefix(out, "Error (decode): "), out)
}

func (suite *CLITestSuite) TestLogLevel_AppliedBeforeConfigLoad() {
	var logs bytes.Buffer
	log.SetOutput(&logs)

	_, err := suite.execute("price")
	suite.Require().NoError(err)
	suite.FileExists(filepath.Join(suite.home, config.FileName))
	suite.Empty(logs.String())

	suite.home = suite.T().TempDir()
	_, err = suite.executeAt("info", "price")
	suite.Require().NoError(err)
	suite.Contains(logs.String(), "Created default config")
}

func (suite *CLITestSuite) TestLogLevel_FromEnv() {
	suite.T().Setenv("BANDFEED_LOG_LEVEL", "error")

	var logs bytes.Buffer
	log.SetOutput(&logs)

	cmd := cli.NewRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"price", "--home", suite.home, "--endpoint", suite.gateway.Endpoint()})
	suite.Require().NoError(cli.Execute(context.Background(), cmd))
	suite.NotContains(logs.String(), "Created default config")
	suite.FileExists(filepath.Join(suite.home, config.FileName))
}

func (suite *CLITestSuite) TestPrice_DebugMetrics() {
	var logs bytes.Buffer
	log.SetOutput(&logs)

	out, err := suite.executeAt("debug", "price")
	suite.Require().NoError(err)
	suite.Equal("4190000\n", out)

	suite.Contains(logs.String(), "metric bandfeed.fetch.success;op=request_search: count=1")
	suite.Contains(logs.String(), "metric bandfeed.fetch.latency;op=request_search: count=1 mean=")
}
