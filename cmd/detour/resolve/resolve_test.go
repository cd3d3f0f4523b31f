package resolvecmder_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	detourcmder "github.com/detour-dev/detour/cmd/detour"
)

func TestResolveCmder(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Resolve Command Suite")
}

func resolve(configDir string, args ...string) error {
	cmd := detourcmder.NewDetourCmd()
	cmd.SetArgs(append(append([]string{"resolve"}, args...), "--config-dir", configDir))
	return cmd.Execute()
}

var _ = Describe("Resolve command", func() {
	var configDir string

	BeforeEach(func() {
		var err error
		configDir, err = os.MkdirTemp("", "detour-resolve-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(configDir)
	})

	It("resolves a configured provider URL", func() {
		path := filepath.Join(configDir, "config.toml")
		Expect(os.WriteFile(path, []byte(`anthropic = "socks5://127.0.0.1:1080"
`), 0o600)).To(Succeed())

		Expect(resolve(configDir, "https://api.anthropic.com/v1/messages")).To(Succeed())
	})

	It("resolves unmatched URLs as direct", func() {
		Expect(resolve(configDir, "https://example.com/")).To(Succeed())
	})

	It("resolves direct when nothing is configured", func() {
		Expect(resolve(configDir, "https://api.openai.com/v1/models")).To(Succeed())
	})

	It("fails when the configuration is invalid", func() {
		path := filepath.Join(configDir, "config.toml")
		Expect(os.WriteFile(path, []byte(`anthropic = "not-a-proxy"
`), 0o600)).To(Succeed())

		Expect(resolve(configDir, "https://api.anthropic.com/v1/messages")).To(HaveOccurred())
	})

	It("requires a URL argument", func() {
		Expect(resolve(configDir)).To(HaveOccurred())
	})
})
