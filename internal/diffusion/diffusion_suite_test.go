package diffusion_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDiffusion(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Diffusion Suite")
}
