package cards_test

import (
	"context"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pnpforge/cardsheets/internal/cards"
	"github.com/pnpforge/cardsheets/internal/geometry"
	"github.com/pnpforge/cardsheets/pkg/models"
)

var _ = Describe("Analyze", func() {
	var (
		testDir string
		geom    geometry.Geometry
		ctx     context.Context
	)

	writeImage := func(name string, w, h int) string {
		path := filepath.Join(testDir, name)
		im := imaging.New(w, h, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
		Expect(imaging.Save(im, path)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		var err error
		testDir, err = os.MkdirTemp("", "analyze-test-*")
		Expect(err).NotTo(HaveOccurred())

		geom = geometry.Resolve(geometry.DefaultFormat())
		ctx = context.Background()
	})

	AfterEach(func() {
		os.RemoveAll(testDir)
	})

	It("should count pairs whose every side is bleed-capable", func() {
		pairs := []models.CardPair{
			{
				Name:  "full",
				Front: writeImage("fulla.png", geom.BleedPxW, geom.BleedPxH),
				Back:  writeImage("fullb.png", geom.BleedPxW, geom.BleedPxH),
			},
			{
				Name:  "trim",
				Front: writeImage("trima.png", geom.InnerPxW, geom.InnerPxH),
			},
		}

		analysis, err := cards.Analyze(ctx, pairs, geom)
		Expect(err).NotTo(HaveOccurred())
		Expect(analysis.TotalPairs).To(Equal(2))
		Expect(analysis.BleedCapablePairs).To(Equal(1))
		Expect(analysis.AllBleedCapable()).To(BeFalse())
		Expect(analysis.TooSmall).To(BeEmpty())
	})

	It("should disqualify a pair when only one side lacks bleed", func() {
		pairs := []models.CardPair{{
			Name:  "mixed",
			Front: writeImage("mixeda.png", geom.BleedPxW, geom.BleedPxH),
			Back:  writeImage("mixedb.png", geom.InnerPxW, geom.InnerPxH),
		}}

		analysis, err := cards.Analyze(ctx, pairs, geom)
		Expect(err).NotTo(HaveOccurred())
		Expect(analysis.BleedCapablePairs).To(BeZero())
	})

	It("should list images below inner size as too small", func() {
		small := writeImage("tinya.png", 400, 500)
		pairs := []models.CardPair{{Name: "tiny", Front: small}}

		analysis, err := cards.Analyze(ctx, pairs, geom)
		Expect(err).NotTo(HaveOccurred())
		Expect(analysis.TooSmall).To(ConsistOf(small))
	})

	It("should list a shared too-small file only once", func() {
		small := writeImage("sharedb.png", 100, 140)
		pairs := []models.CardPair{
			{Name: "one", Front: writeImage("onea.png", geom.InnerPxW, geom.InnerPxH), Back: small},
			{Name: "two", Front: writeImage("twoa.png", geom.InnerPxW, geom.InnerPxH), Back: small},
		}

		analysis, err := cards.Analyze(ctx, pairs, geom)
		Expect(err).NotTo(HaveOccurred())
		Expect(analysis.TooSmall).To(HaveLen(1))
	})

	It("should treat unreadable files as zero-sized", func() {
		broken := filepath.Join(testDir, "brokena.png")
		Expect(os.WriteFile(broken, []byte("not an image"), 0644)).To(Succeed())
		pairs := []models.CardPair{{Name: "broken", Front: broken}}

		analysis, err := cards.Analyze(ctx, pairs, geom)
		Expect(err).NotTo(HaveOccurred())
		Expect(analysis.TooSmall).To(ConsistOf(broken))
		Expect(analysis.BleedCapablePairs).To(BeZero())
	})

	It("should report an empty deck as not bleed-capable", func() {
		analysis, err := cards.Analyze(ctx, nil, geom)
		Expect(err).NotTo(HaveOccurred())
		Expect(analysis.AllBleedCapable()).To(BeFalse())
	})
})
