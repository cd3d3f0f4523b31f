package providers_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/detour-dev/detour/pkg/providers"
)

func TestProviders(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Providers Suite")
}

var _ = Describe("Builtin", func() {
	It("lists every provider exactly once", func() {
		seen := map[string]bool{}
		for _, p := range providers.Builtin() {
			Expect(seen[p.ID]).To(BeFalse(), "duplicate provider %s", p.ID)
			seen[p.ID] = true
		}
		Expect(seen).To(HaveLen(20))
	})

	It("keeps google ahead of the vertex providers", func() {
		// google's bare googleapis.com pattern shadows the vertex
		// endpoints when both are configured; that precedence comes from
		// declaration order and changing it changes routing behavior.
		var order []string
		for _, p := range providers.Builtin() {
			order = append(order, p.ID)
		}
		Expect(order[0]).To(Equal("google"))
		Expect(order[1]).To(Equal("google-vertex"))
		Expect(order[2]).To(Equal("google-vertex-anthropic"))
	})

	It("declares every pattern lowercase and non-empty", func() {
		for _, p := range providers.Builtin() {
			Expect(p.Patterns).NotTo(BeEmpty(), "provider %s has no patterns", p.ID)
			for _, pat := range p.Patterns {
				Expect(pat).To(Equal(strings.ToLower(pat)))
				Expect(pat).NotTo(BeEmpty())
			}
		}
	})
})

var _ = Describe("Patterns", func() {
	It("returns the google endpoints", func() {
		Expect(providers.Patterns("google")).To(Equal([]string{
			"generativelanguage.googleapis.com",
			"ai.google.dev",
			"googleapis.com",
		}))
	})

	It("maps moonshot and kimi to the same endpoint", func() {
		Expect(providers.Patterns("moonshot")).To(Equal(providers.Patterns("kimi")))
	})

	It("returns nil for unknown providers", func() {
		Expect(providers.Patterns("nope")).To(BeNil())
	})
})

var _ = Describe("IsKnown", func() {
	It("recognizes builtin ids", func() {
		Expect(providers.IsKnown("anthropic")).To(BeTrue())
		Expect(providers.IsKnown("github-copilot")).To(BeTrue())
		Expect(providers.IsKnown("debug")).To(BeFalse())
		Expect(providers.IsKnown("")).To(BeFalse())
	})
})
