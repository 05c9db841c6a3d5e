package main

// hdrcompare builds comparison grids out of renders.
//
//   hdrcompare -mode pairwise -prefix cornell -in out/        # cornell.<variant>.hdr, all pairs
//   hdrcompare -mode pairwise a.hdr b.hdr c.exr               # the named files instead
//   hdrcompare -mode table -in subpaths/                      # every sNNtNN.hdr
//   hdrcompare -mode sum -vs 4 -mins 0 -maxs 4 -in subpaths/  # sNNtNN.hdr with s+t=4
//   hdrcompare -mode pair a.hdr b.hdr                         # one diff image, plus stats
//
// Any .yaml file in the args is loaded as the base configuration; flags
// override it.

import(
	"flag"
	"log"
	"strings"

	"github.com/abworrall/hdr-compare/pkg/compare"
)

var(
	fVerbosity int
	fMode string
	fInputDir string
	fOutputDir string
	fOutputFilename string
	fPrefix string
	fVariants string
	fKernelSize int
	fGamma float64
	fCaptionColor string
	fFontPath string
	fVertexSum int
	fMinS int
	fMaxS int
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fMode, "mode", "pairwise", "what to build: pairwise, table, sum, pair")
	flag.StringVar(&fInputDir, "in", "", "directory holding the renders (default .)")
	flag.StringVar(&fOutputDir, "out", "", "directory for the output image (default .)")
	flag.StringVar(&fOutputFilename, "o", "", "name of output image file (default depends on mode)")
	flag.StringVar(&fPrefix, "prefix", "", "renders are named <prefix>.<variant>.hdr")
	flag.StringVar(&fVariants, "variants", "", "comma separated variant names (default "+strings.Join(compare.DefaultVariants, ",")+")")
	flag.IntVar(&fKernelSize, "k", 0, "side of the blur kernel applied to differences; odd (default 19)")
	flag.Float64Var(&fGamma, "gamma", 0, "display gamma (default 2.2)")
	flag.StringVar(&fCaptionColor, "caption", "", "caption color as #rrggbb")
	flag.StringVar(&fFontPath, "font", "", "TrueType font for captions (default Go Regular)")
	flag.IntVar(&fVertexSum, "vs", 0, "sum mode: s+t of the subpaths to compare")
	flag.IntVar(&fMinS, "mins", 0, "sum mode: lowest s")
	flag.IntVar(&fMaxS, "maxs", -1, "sum mode: highest s (default vs)")
	flag.Parse()

	log.Printf("hdrcompare starting\n")
}

func main() {
	job := compare.NewJob()
	if err := job.LoadFilesAndDirs(flag.Args()...); err != nil {
		log.Fatal(err)
	}

	// Override the config file with command line args, if relevant
	if fVerbosity > 0 { job.Verbosity = fVerbosity }
	if fInputDir != "" { job.InputDir = fInputDir }
	if fOutputDir != "" { job.OutputDir = fOutputDir }
	if fOutputFilename != "" { job.OutputFilename = fOutputFilename }
	if fPrefix != "" { job.Prefix = fPrefix }
	if fVariants != "" { job.Variants = strings.Split(fVariants, ",") }
	if fKernelSize != 0 { job.KernelSize = fKernelSize }
	if fGamma > 0.0 { job.Gamma = fGamma }
	if fCaptionColor != "" { job.CaptionColor = fCaptionColor }
	if fFontPath != "" { job.FontPath = fFontPath }

	if err := job.Finalize(); err != nil {
		log.Fatal(err)
	}
	if job.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", job.Config.AsYaml())
	}

	var out string
	var err error

	switch fMode {
	case "pairwise":
		if len(job.Inputs) > 0 {
			names := []string{}
			for _, in := range job.Inputs {
				names = append(names, compare.VariantName(in))
			}
			out, err = compare.PairwiseFiles(job.Config, names, job.Inputs)
		} else {
			out, err = compare.Pairwise(job.Config)
		}

	case "table":
		out, err = compare.Table(job.Config)

	case "sum":
		maxS := fMaxS
		if maxS < 0 {
			maxS = fVertexSum
		}
		out, err = compare.SumTable(job.Config, fVertexSum, fMinS, maxS)

	case "pair":
		if len(job.Inputs) != 2 {
			log.Fatalf("pair mode wants two images, got %d", len(job.Inputs))
		}
		out, err = compare.PairDiff(job.Config, job.Inputs[0], job.Inputs[1])

	default:
		log.Fatalf("no mode named '%s'", fMode)
	}

	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Output in %s\n", out)
}
