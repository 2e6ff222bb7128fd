package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/GPTx-global/bandfeed/oracle/cli"
	"github.com/GPTx-global/bandfeed/oracle/fetcher"
	"github.com/GPTx-global/bandfeed/oracle/log"
	"github.com/GPTx-global/bandfeed/oracle/testutil"
	"github.com/GPTx-global/bandfeed/oracle/types"
)

const liveEndpointEnv = "BANDFEED_E2E_ENDPOINT"

// run executes bandfeed in process and returns its stdout, where failures
// are reported too.
func run(endpoint string, args ...string) (string, error) {
	cmd := cli.NewRootCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args,
		"--home", ginkgo.GinkgoT().TempDir(),
		"--endpoint", endpoint,
		"--log-level", "error",
	))

	err := cli.Execute(context.Background(), cmd)
	return out.String(), err
}

var _ = ginkgo.Describe("bandfeed against a stub gateway", func() {
	var gateway *testutil.Gateway

	ginkgo.BeforeEach(func() {
		log.InitLogger()
		log.SetOutput(ginkgo.GinkgoWriter)
		gateway = testutil.NewGateway()
	})

	ginkgo.AfterEach(func() {
		gateway.Close()
		log.InitLogger()
	})

	for _, tc := range TestCases {
		ginkgo.It(tc.Name, func() {
			tc.Mock(gateway)

			out, err := run(gateway.Endpoint(), tc.Args...)

			if !tc.ExpPass {
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err).To(gomega.MatchError(tc.ExpErr))
				gomega.Expect(out).To(gomega.HavePrefix("Error (" + types.ErrorKind(tc.ExpErr) + "): "))
				gomega.Expect(out).To(gomega.ContainSubstring(err.Error()))
				return
			}

			gomega.Expect(err).To(gomega.Succeed())
			if tc.Expected != "" {
				gomega.Expect(out).To(gomega.Equal(tc.Expected))
			}
			for _, s := range tc.Contains {
				gomega.Expect(out).To(gomega.ContainSubstring(s))
			}
		})
	}

	ginkgo.It("reaches the gateway once per query", func() {
		_, err := run(gateway.Endpoint(), "price")
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(gateway.Hits()).To(gomega.Equal(1))
	})
})

var _ = ginkgo.Describe("bandfeed against a live gateway", func() {
	var endpoint string

	ginkgo.BeforeEach(func() {
		endpoint = os.Getenv(liveEndpointEnv)
		if endpoint == "" {
			ginkgo.Skip(liveEndpointEnv + " is not set")
		}
	})

	ginkgo.It("fetches the BAND price with the default request", func() {
		f, err := fetcher.New(endpoint, fetcher.Params{
			OracleScriptID: 1,
			Calldata:       testutil.DefaultCalldata,
			MinCount:       4,
			AskCount:       4,
		}, fetcher.WithTimeout(time.Minute))
		gomega.Expect(err).To(gomega.Succeed())

		script, err := f.OracleScript(context.Background())
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(script.Result.Name).NotTo(gomega.BeEmpty())

		px, err := f.RequestData(context.Background())
		if types.IsRetryable(err) {
			ginkgo.Skip("gateway unavailable: " + err.Error())
		}
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(px).To(gomega.BeNumerically(">", 0))

		out, err := run(endpoint)
		gomega.Expect(err).To(gomega.Succeed())
		_, err = strconv.ParseUint(strings.TrimSpace(out), 10, 64)
		gomega.Expect(err).To(gomega.Succeed())
	})
})
