package generator_test

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pnpforge/cardsheets/internal/config"
	"github.com/pnpforge/cardsheets/internal/generator"
	"github.com/pnpforge/cardsheets/internal/geometry"
	"github.com/pnpforge/cardsheets/internal/prep"
	"github.com/pnpforge/cardsheets/internal/render"
	"github.com/pnpforge/cardsheets/pkg/logger"
	"github.com/pnpforge/cardsheets/pkg/models"
)

var _ = Describe("Generator", func() {
	var (
		cardDir  string
		outDir   string
		cacheDir string
		geom     geometry.Geometry
		log      *logger.Logger
		ctx      context.Context
		opts     generator.Options
	)

	writeCard := func(name string, w, h int) {
		path := filepath.Join(cardDir, name)
		im := imaging.New(w, h, color.NRGBA{R: 230, G: 230, B: 230, A: 255})
		Expect(imaging.Save(im, path)).To(Succeed())
	}

	writeDeck := func(pairs int, withBacks bool) {
		for i := 1; i <= pairs; i++ {
			writeCard(fmt.Sprintf("card%02da.png", i), geom.InnerPxW, geom.InnerPxH)
			if withBacks {
				writeCard(fmt.Sprintf("card%02db.png", i), geom.InnerPxW, geom.InnerPxH)
			}
		}
	}

	run := func() *generator.RunReport {
		pre, err := prep.New(cacheDir, geom, opts.Quality, log)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(pre.Cleanup)

		report, err := generator.New(opts, geom, pre, log).Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		return report
	}

	pageCount := func(path string) int {
		Expect(api.ValidateFile(path, nil)).To(Succeed())
		pages, err := api.PageCountFile(path)
		Expect(err).NotTo(HaveOccurred())
		return pages
	}

	BeforeEach(func() {
		var err error
		cardDir, err = os.MkdirTemp("", "gen-cards-*")
		Expect(err).NotTo(HaveOccurred())
		outDir, err = os.MkdirTemp("", "gen-out-*")
		Expect(err).NotTo(HaveOccurred())
		cacheDir, err = os.MkdirTemp("", "gen-cache-*")
		Expect(err).NotTo(HaveOccurred())

		geom = geometry.Resolve(geometry.DefaultFormat())
		log = logger.New(logger.WithOutput(GinkgoWriter), logger.WithPrefix("[test] "))
		ctx = context.Background()

		opts = generator.Options{
			CardDir:       cardDir,
			OutputDir:     outDir,
			OutputBase:    "deck",
			Layouts:       []models.LayoutFamily{models.LayoutStandard},
			Papers:        []models.PaperSize{models.PaperLetter},
			Quality:       models.QualityHigh,
			CopyrightName: "Example Games",
			VersionLabel:  "v1.0",
			StandardMarks: render.MarkStyle{LengthPt: 10, WidthPt: 1},
			BleedMarks:    render.MarkStyle{LengthPt: 20, WidthPt: 1},
		}
	})

	AfterEach(func() {
		os.RemoveAll(cardDir)
		os.RemoveAll(outDir)
		os.RemoveAll(cacheDir)
	})

	Context("with a front-only deck", func() {
		It("should emit front sheets and no back sheets", func() {
			writeDeck(10, false)

			report := run()
			Expect(report.Pairs).To(Equal(10))
			Expect(report.Documents).To(HaveLen(1))

			doc := report.Documents[0]
			Expect(doc.Err).NotTo(HaveOccurred())
			Expect(filepath.Base(doc.Path)).To(Equal("deck_9cards.pdf"))
			// Ten cards on 3x3 sheets: two front pages, zero back pages.
			Expect(pageCount(doc.Path)).To(Equal(2))
		})
	})

	Context("with a full duplex deck", func() {
		It("should alternate front and back pages", func() {
			writeDeck(9, true)

			report := run()
			Expect(report.Documents).To(HaveLen(1))
			Expect(pageCount(report.Documents[0].Path)).To(Equal(2))
		})

		It("should chunk the deck by sheet capacity", func() {
			writeDeck(10, true)

			report := run()
			// Two sheets, each with a front and a back page.
			Expect(pageCount(report.Documents[0].Path)).To(Equal(4))
		})
	})

	Context("with replication counts", func() {
		It("should expand the deck before placement", func() {
			writeCard("unit[face,010].png", geom.InnerPxW, geom.InnerPxH)

			report := run()
			Expect(report.Pairs).To(Equal(1))
			Expect(report.Cards).To(Equal(10))
			Expect(pageCount(report.Documents[0].Path)).To(Equal(2))
		})
	})

	Context("layout narrowing", func() {
		It("should drop the bleed layout when a pair lacks bleed-size images", func() {
			writeDeck(2, false)
			opts.Layouts = []models.LayoutFamily{models.LayoutStandard, models.LayoutBleed}

			report := run()
			Expect(report.Documents).To(HaveLen(1))
			Expect(report.Documents[0].Layout).To(Equal(models.LayoutStandard))
			Expect(strings.Join(report.Warnings, "\n")).To(ContainSubstring("skipping bleed layout"))
		})

		It("should keep the bleed layout for an all-bleed deck", func() {
			for i := 1; i <= 4; i++ {
				writeCard(fmt.Sprintf("card%02da.png", i), geom.BleedPxW, geom.BleedPxH)
			}
			opts.Layouts = []models.LayoutFamily{models.LayoutBleed}

			report := run()
			Expect(report.Documents).To(HaveLen(1))

			doc := report.Documents[0]
			Expect(doc.Err).NotTo(HaveOccurred())
			// Letter landscape fits 3x2 bleed cells.
			Expect(filepath.Base(doc.Path)).To(Equal("deck_6cards.pdf"))
			Expect(pageCount(doc.Path)).To(Equal(1))
		})

		It("should drop the gutter-fold layout for a deck without backs", func() {
			writeDeck(3, false)
			opts.Layouts = []models.LayoutFamily{models.LayoutGutterFold}

			report := run()
			Expect(report.Documents).To(BeEmpty())
			Expect(strings.Join(report.Warnings, "\n")).To(ContainSubstring("no back images"))
		})
	})

	Context("gutter-fold documents", func() {
		It("should place one column chunk per sheet", func() {
			writeDeck(5, true)
			opts.Layouts = []models.LayoutFamily{models.LayoutGutterFold}

			report := run()
			Expect(report.Documents).To(HaveLen(1))

			doc := report.Documents[0]
			Expect(doc.Err).NotTo(HaveOccurred())
			Expect(filepath.Base(doc.Path)).To(Equal("deck_gutterfold.pdf"))
			// Four poker columns per Letter landscape sheet.
			Expect(pageCount(doc.Path)).To(Equal(2))
		})

		It("should record a space error when no orientation fits", func() {
			writeDeck(1, true)
			opts.Layouts = []models.LayoutFamily{models.LayoutGutterFold}
			opts.Papers = []models.PaperSize{{Name: "Tiny", Width: 200, Height: 300}}

			report := run()
			Expect(report.Documents).To(HaveLen(1))
			Expect(report.Documents[0].Err).To(HaveOccurred())
			Expect(report.Documents[0].Err.Error()).To(ContainSubstring("not enough page space"))
		})
	})

	Context("multiple paper sizes", func() {
		It("should suffix filenames with the paper name", func() {
			writeDeck(2, false)
			opts.Papers = []models.PaperSize{models.PaperA4, models.PaperLetter}

			report := run()
			Expect(report.Documents).To(HaveLen(2))

			var names []string
			for _, d := range report.Documents {
				Expect(d.Err).NotTo(HaveOccurred())
				names = append(names, filepath.Base(d.Path))
			}
			Expect(names).To(ConsistOf("deck_9cards_A4.pdf", "deck_9cards_Letter.pdf"))
		})
	})

	Context("progress reporting", func() {
		It("should call the callback once per combination", func() {
			writeDeck(2, false)
			opts.Layouts = []models.LayoutFamily{models.LayoutStandard}
			opts.Papers = []models.PaperSize{models.PaperA4, models.PaperLetter}

			pre, err := prep.New(cacheDir, geom, opts.Quality, log)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(pre.Cleanup)

			gen := generator.New(opts, geom, pre, log)
			var calls []int
			gen.Progress = func(done, total int) {
				Expect(total).To(Equal(2))
				calls = append(calls, done)
			}

			_, err = gen.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]int{1, 2}))
		})
	})

	Context("with an empty card folder", func() {
		It("should fail before producing any document", func() {
			pre, err := prep.New(cacheDir, geom, opts.Quality, log)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(pre.Cleanup)

			_, err = generator.New(opts, geom, pre, log).Run(ctx)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("options from config", func() {
		It("should resolve selectors into typed options", func() {
			cfg := config.Default()
			cfg.CardDir = cardDir
			cfg.Layouts = []string{"3x3", "gutterfold"}
			cfg.PaperSizes = []string{"letter"}
			cfg.Quality = "medium"

			got, err := generator.OptionsFromConfig(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Layouts).To(Equal([]models.LayoutFamily{models.LayoutStandard, models.LayoutGutterFold}))
			Expect(got.Papers).To(Equal([]models.PaperSize{models.PaperLetter}))
			Expect(got.Quality).To(Equal(models.QualityMedium))
			Expect(got.StandardMarks).To(Equal(render.MarkStyle{LengthPt: 10, WidthPt: 1}))
			Expect(got.BleedMarks).To(Equal(render.MarkStyle{LengthPt: 20, WidthPt: 1}))
		})

		It("should reject bad selectors", func() {
			cfg := config.Default()
			cfg.Layouts = []string{"hexgrid"}
			_, err := generator.OptionsFromConfig(cfg)
			Expect(err).To(HaveOccurred())
		})
	})
})
