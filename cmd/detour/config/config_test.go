package configcmder_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	detourcmder "github.com/detour-dev/detour/cmd/detour"
)

func TestConfigCmder(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Command Suite")
}

// execute runs the detour root command with the given args against a
// dedicated config dir.
func execute(configDir string, args ...string) error {
	cmd := detourcmder.NewDetourCmd()
	cmd.SetArgs(append(args, "--config-dir", configDir))
	return cmd.Execute()
}

func readConfigFile(configDir string) map[string]any {
	raw := map[string]any{}
	_, err := toml.DecodeFile(filepath.Join(configDir, "config.toml"), &raw)
	Expect(err).NotTo(HaveOccurred())
	return raw
}

var _ = Describe("Config commands", func() {
	var configDir string

	BeforeEach(func() {
		var err error
		configDir, err = os.MkdirTemp("", "detour-config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(configDir)
	})

	Describe("set", func() {
		It("writes a validated proxy URL to the config file", func() {
			err := execute(configDir, "config", "set", "anthropic", "socks5://127.0.0.1:1080")
			Expect(err).NotTo(HaveOccurred())

			raw := readConfigFile(configDir)
			Expect(raw["anthropic"]).To(Equal("socks5://127.0.0.1:1080"))
		})

		It("stores the debug key as a boolean", func() {
			err := execute(configDir, "config", "set", "debug", "true")
			Expect(err).NotTo(HaveOccurred())

			raw := readConfigFile(configDir)
			Expect(raw["debug"]).To(Equal(true))
		})

		It("rejects an invalid proxy URL without touching the file", func() {
			err := execute(configDir, "config", "set", "anthropic", "not-a-proxy")
			Expect(err).To(HaveOccurred())

			_, statErr := os.Stat(filepath.Join(configDir, "config.toml"))
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})

		It("rejects a proxy URL without a port", func() {
			err := execute(configDir, "config", "set", "anthropic", "http://proxy.example.com")
			Expect(err).To(HaveOccurred())
		})

		It("accepts unknown provider ids", func() {
			err := execute(configDir, "config", "set", "my-internal-llm", "http://127.0.0.1:8080")
			Expect(err).NotTo(HaveOccurred())

			raw := readConfigFile(configDir)
			Expect(raw["my-internal-llm"]).To(Equal("http://127.0.0.1:8080"))
		})

		It("preserves existing entries", func() {
			Expect(execute(configDir, "config", "set", "anthropic", "socks5://127.0.0.1:1080")).To(Succeed())
			Expect(execute(configDir, "config", "set", "openai", "http://127.0.0.1:20171")).To(Succeed())

			raw := readConfigFile(configDir)
			Expect(raw).To(HaveLen(2))
			Expect(raw["anthropic"]).To(Equal("socks5://127.0.0.1:1080"))
			Expect(raw["openai"]).To(Equal("http://127.0.0.1:20171"))
		})
	})

	Describe("get", func() {
		It("reads back a set value", func() {
			Expect(execute(configDir, "config", "set", "groq", "https://proxy.example.com:8443")).To(Succeed())
			Expect(execute(configDir, "config", "get", "groq")).To(Succeed())
		})

		It("succeeds for unset keys", func() {
			Expect(execute(configDir, "config", "get", "mistral")).To(Succeed())
		})

		It("requires exactly one argument", func() {
			Expect(execute(configDir, "config", "get")).To(HaveOccurred())
		})
	})

	Describe("unset", func() {
		It("removes a key from the config file", func() {
			Expect(execute(configDir, "config", "set", "anthropic", "socks5://127.0.0.1:1080")).To(Succeed())
			Expect(execute(configDir, "config", "set", "openai", "http://127.0.0.1:20171")).To(Succeed())

			Expect(execute(configDir, "config", "unset", "anthropic")).To(Succeed())

			raw := readConfigFile(configDir)
			Expect(raw).NotTo(HaveKey("anthropic"))
			Expect(raw).To(HaveKey("openai"))
		})

		It("succeeds for keys that were never set", func() {
			Expect(execute(configDir, "config", "unset", "anthropic")).To(Succeed())
		})
	})

	Describe("list", func() {
		It("succeeds with no configuration", func() {
			Expect(execute(configDir, "config", "list")).To(Succeed())
		})

		It("succeeds with configuration present", func() {
			Expect(execute(configDir, "config", "set", "anthropic", "socks5://127.0.0.1:1080")).To(Succeed())
			Expect(execute(configDir, "config", "list")).To(Succeed())
		})
	})
})
