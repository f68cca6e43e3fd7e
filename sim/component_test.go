package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ComponentBase", func() {
	var (
		component *ComponentBase
	)

	BeforeEach(func() {
		component = NewComponentBase("Cache")
	})

	It("should set and get name", func() {
		Expect(component.Name()).To(Equal("Cache"))
	})

	It("should be a component", func() {
		var c Component = component

		c.AcceptHook(&recordingHook{})

		Expect(c.NumHooks()).To(Equal(1))
	})
})
