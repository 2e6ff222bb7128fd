// Package e2e runs the bandfeed command tree against a stub gateway, and
// against a live one when BANDFEED_E2E_ENDPOINT is set:
//
//	BANDFEED_E2E_ENDPOINT=http://guanyu-devnet.bandchain.org/rest go test ./tests/e2e/...
package e2e

import (
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestE2E(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "bandfeed e2e Suite")
}
