package layout_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pnpforge/cardsheets/internal/layout"
	"github.com/pnpforge/cardsheets/pkg/models"
)

var _ = Describe("Plan", func() {
	var (
		margins layout.Margins
		reserve layout.Reserve
	)

	BeforeEach(func() {
		margins = layout.DefaultMargins()
		reserve = layout.DefaultReserve()
	})

	Context("standard poker cells on Letter portrait", func() {
		var plan layout.GridPlan

		BeforeEach(func() {
			p := models.PaperLetter
			plan = layout.Plan(p.Width, p.Height, margins, 180, 252, reserve)
		})

		It("should fit a 3x3 grid", func() {
			Expect(plan.Cols).To(Equal(3))
			Expect(plan.Rows).To(Equal(3))
			Expect(plan.Capacity()).To(Equal(9))
		})

		It("should center the grid in the printable area", func() {
			// 612 - 12 margins = 600 wide, grid 540.
			Expect(plan.X0).To(BeNumerically("~", 36.0, 1e-9))
			// 792 - 12 margins - 12 reserve = 768 high, grid 756.
			Expect(plan.Y0).To(BeNumerically("~", 24.0, 1e-9))
			Expect(plan.TopY()).To(BeNumerically("~", 780.0, 1e-9))
		})
	})

	Context("bleed poker cells (198x270) on landscape pages", func() {
		It("should fit 4x2 on A4", func() {
			p := models.PaperA4.Landscape()
			plan := layout.Plan(p.Width, p.Height, margins, 198, 270, reserve)
			Expect(plan.Cols).To(Equal(4))
			Expect(plan.Rows).To(Equal(2))
			Expect(plan.Capacity()).To(Equal(8))
		})

		It("should fit 3x2 on Letter", func() {
			p := models.PaperLetter.Landscape()
			plan := layout.Plan(p.Width, p.Height, margins, 198, 270, reserve)
			Expect(plan.Cols).To(Equal(3))
			Expect(plan.Rows).To(Equal(2))
			Expect(plan.Capacity()).To(Equal(6))
		})
	})

	Context("when the page is smaller than one cell", func() {
		It("should degrade to a 1x1 grid anchored inside the margins", func() {
			plan := layout.Plan(100, 100, margins, 180, 252, reserve)
			Expect(plan.Cols).To(Equal(1))
			Expect(plan.Rows).To(Equal(1))
			Expect(plan.X0).To(BeNumerically("~", margins.Left, 1e-9))
			Expect(plan.Y0).To(BeNumerically("~", margins.Bottom+reserve.Bottom, 1e-9))
		})
	})
})

var _ = Describe("PlanGutterFold", func() {
	margins := layout.DefaultMargins()
	reserve := layout.DefaultReserve()

	It("should fit two poker rows plus the gutter on Letter landscape", func() {
		p := models.PaperLetter.Landscape()
		plan, err := layout.PlanGutterFold(p.Width, p.Height, margins, 180, 252, reserve)
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Rows).To(Equal(2))
		Expect(plan.Cols).To(Equal(4))
		Expect(plan.ExtraH).To(Equal(layout.FoldGutterPt))
		Expect(plan.Height()).To(BeNumerically("~", 2*252+layout.FoldGutterPt, 1e-9))
	})

	It("should fail with the numeric shortfall when the height is insufficient", func() {
		_, err := layout.PlanGutterFold(300, 200, margins, 180, 252, reserve)
		Expect(err).To(HaveOccurred())

		var space *layout.SpaceError
		Expect(err).To(BeAssignableToTypeOf(space))
		space = err.(*layout.SpaceError)
		Expect(space.RequiredPt).To(BeNumerically("~", 516.0, 1e-9))
		Expect(space.AvailablePt).To(BeNumerically("~", 176.0, 1e-9))
		Expect(err.Error()).To(ContainSubstring("short 340.0pt"))
	})
})
