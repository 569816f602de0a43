package geometry_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pnpforge/cardsheets/internal/geometry"
)

var _ = Describe("Geometry", func() {
	Context("format lookup", func() {
		It("should return the poker format for the empty string", func() {
			f, err := geometry.FormatByName("")
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Name).To(Equal("poker"))
		})

		It("should match names case-insensitively", func() {
			f, err := geometry.FormatByName("  TAROT ")
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Name).To(Equal("tarot"))
		})

		It("should reject unknown formats and name the known ones", func() {
			_, err := geometry.FormatByName("jumbo")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("poker"))
		})
	})

	Context("resolving the poker format", func() {
		var g geometry.Geometry

		BeforeEach(func() {
			f, err := geometry.FormatByName("poker")
			Expect(err).NotTo(HaveOccurred())
			g = geometry.Resolve(f)
		})

		It("should derive the 2.5x3.5 inch trim size in points", func() {
			Expect(g.TrimPtW).To(BeNumerically("~", 180.0, 1e-9))
			Expect(g.TrimPtH).To(BeNumerically("~", 252.0, 1e-9))
		})

		It("should derive the inner pixel size at 300 DPI", func() {
			Expect(g.InnerPxW).To(Equal(750))
			Expect(g.InnerPxH).To(Equal(1050))
		})

		It("should add the asymmetric bleed border per axis", func() {
			Expect(g.BleedPxW).To(Equal(825))
			Expect(g.BleedPxH).To(Equal(1125))
		})

		It("should scale the bleed cell by the pixel ratio per axis", func() {
			w, h := g.BleedCellPt()
			Expect(w).To(BeNumerically("~", 198.0, 1e-9))
			Expect(h).To(BeNumerically("~", 270.0, 1e-9))
		})

		It("should put the horizontal trim lines at the border fractions", func() {
			left, right := g.TrimFractionsX()
			Expect(left).To(BeNumerically("~", 37.0/825.0, 1e-12))
			Expect(right).To(BeNumerically("~", 787.0/825.0, 1e-12))
		})

		It("should put the vertical trim lines at the border fractions", func() {
			bottom, top := g.TrimFractionsY()
			Expect(bottom).To(BeNumerically("~", 38.0/1125.0, 1e-12))
			Expect(top).To(BeNumerically("~", 1088.0/1125.0, 1e-12))
		})
	})

	DescribeTable("bleed size is inner size plus 75 pixels per axis",
		func(name string, innerW, innerH int) {
			f, err := geometry.FormatByName(name)
			Expect(err).NotTo(HaveOccurred())
			g := geometry.Resolve(f)
			Expect(g.InnerPxW).To(Equal(innerW))
			Expect(g.InnerPxH).To(Equal(innerH))
			Expect(g.BleedPxW).To(Equal(innerW + 75))
			Expect(g.BleedPxH).To(Equal(innerH + 75))
		},
		Entry("poker", "poker", 750, 1050),
		Entry("bridge", "bridge", 675, 1050),
		Entry("mini", "mini", 525, 750),
		Entry("tarot", "tarot", 825, 1425),
	)

	It("should keep inch boxes consistent with the pixel sizes", func() {
		g := geometry.Resolve(geometry.DefaultFormat())
		w, h := g.InnerBoxIn()
		Expect(w).To(BeNumerically("~", 2.5, 1e-9))
		Expect(h).To(BeNumerically("~", 3.5, 1e-9))
		w, h = g.BleedBoxIn()
		Expect(w).To(BeNumerically("~", 2.75, 1e-9))
		Expect(h).To(BeNumerically("~", 3.75, 1e-9))
	})
})
