package main

// hdrconvert converts renders between containers, or into something to look
// at.
//
//   hdrconvert a.hdr b.hdr                       # a.png, b.png, gamma tone mapped
//   hdrconvert -tonemapper drago03 -o a.tif a.hdr
//   hdrconvert -mode convert -o a.exr a.hdr      # float to float, lossless
//   hdrconvert -mode heatmap -channel y a.hdr    # a.heatmap.png
//   hdrconvert -mode arrange a.hdr b.hdr         # a_b.png, side by side

import(
	"flag"
	"log"

	"github.com/abworrall/hdr-compare/pkg/compare"
	"github.com/abworrall/hdr-compare/pkg/tonemap"
)

var(
	fVerbosity int
	fMode string
	fOutputDir string
	fOutputFilename string
	fTonemapper string
	fGamma float64
	fHDREncoding string
	fEXRCompression string
	fChannel string
	fMin float64
	fMax float64
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fMode, "mode", "png", "what to do: png, convert, heatmap, arrange")
	flag.StringVar(&fOutputDir, "out", "", "directory for output files (default .)")
	flag.StringVar(&fOutputFilename, "o", "", "name of output file; only with a single input")
	flag.StringVar(&fTonemapper, "tonemapper", "", "how to tonemap from HDR to LDR: "+tonemap.ListOperators())
	flag.Float64Var(&fGamma, "gamma", 0, "display gamma (default 2.2)")
	flag.StringVar(&fHDREncoding, "hdrencoding", "", "how to write .hdr files: float, rgbe")
	flag.StringVar(&fEXRCompression, "exrcompression", "", "how to compress .exr files: none, zips, zip")
	flag.StringVar(&fChannel, "channel", "", "heatmap channel: r, g, b, y")
	flag.Float64Var(&fMin, "min", 0, "heatmap: clip values below this")
	flag.Float64Var(&fMax, "max", 0, "heatmap: clip values above this (0 for no clip)")
	flag.Parse()

	log.Printf("hdrconvert starting\n")
}

func main() {
	job := compare.NewJob()
	if err := job.LoadFilesAndDirs(flag.Args()...); err != nil {
		log.Fatal(err)
	}

	if fVerbosity > 0 { job.Verbosity = fVerbosity }
	if fOutputDir != "" { job.OutputDir = fOutputDir }
	if fTonemapper != "" { job.Tonemapper = fTonemapper }
	if fGamma > 0.0 { job.Gamma = fGamma }
	if fHDREncoding != "" { job.HDREncoding = fHDREncoding }
	if fEXRCompression != "" { job.EXRCompression = fEXRCompression }
	if fChannel != "" { job.Heatmap.Channel = fChannel }
	if fMin != 0.0 { job.Heatmap.Min = fMin }
	if fMax != 0.0 { job.Heatmap.Max = fMax }

	if err := job.Finalize(); err != nil {
		log.Fatal(err)
	}
	if job.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", job.Config.AsYaml())
	}

	if len(job.Inputs) == 0 {
		log.Fatal("no input images")
	}
	if fOutputFilename != "" && len(job.Inputs) > 1 && fMode != "arrange" {
		log.Fatalf("-o given with %d inputs", len(job.Inputs))
	}

	if fMode == "arrange" {
		if len(job.Inputs) != 2 {
			log.Fatalf("arrange wants two images, got %d", len(job.Inputs))
		}
		out, err := compare.Arrange(job.Config, job.Inputs[0], job.Inputs[1], fOutputFilename)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Output in %s\n", out)
		return
	}

	for _, in := range job.Inputs {
		var out string
		var err error

		switch fMode {
		case "png":
			out, err = compare.Convert(job.Config, in, fOutputFilename)
		case "convert":
			if fOutputFilename == "" {
				log.Fatal("convert mode wants -o")
			}
			out, err = compare.Convert(job.Config, in, fOutputFilename)
		case "heatmap":
			out, err = compare.Heatmap(job.Config, in, fOutputFilename)
		default:
			log.Fatalf("no mode named '%s'", fMode)
		}

		if err != nil {
			log.Fatal(err)
		}
		log.Printf("%s -> %s\n", in, out)
	}
}
