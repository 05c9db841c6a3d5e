package tonemap

import(
	"fmt"
	"image"

	"github.com/mdouchement/hdr/tmo"

	"github.com/abworrall/hdr-compare/pkg/hdrerr"
	"github.com/abworrall/hdr-compare/pkg/radiance"
)

var(
	// "gamma" is the display curve used for the comparison grids; the rest
	// are the hdr package's operators, handy when eyeballing a single render.
	Operators = []string{"gamma", "drago03", "durand", "icam06", "linear", "reinhard05"}
)

func ListOperators() string {
	return fmt.Sprintf("%v", Operators)
}

func IsOperator(name string) bool {
	for _, op := range Operators {
		if op == name {
			return true
		}
	}
	return name == ""
}

// Apply runs the named operator and returns an 8-bit image. The gamma value
// is only used by the "gamma" operator.
func Apply(name string, im *radiance.Image, gamma float64) (image.Image, error) {
	if name == "" || name == "gamma" {
		return ToDisplayGamma(im, gamma), nil
	}

	op, err := setupOperator(name, im)
	if err != nil {
		return nil, err
	}
	return op.Perform(), nil
}

func setupOperator(name string, im *radiance.Image) (tmo.ToneMappingOperator, error) {
	switch name {
	case "drago03":
		return tmo.NewDefaultDrago03(im), nil
	case "durand":
		return tmo.NewDefaultDurand(im), nil
	case "icam06":
		return tmo.NewDefaultICam06(im), nil
	case "linear":
		return tmo.NewLinear(im), nil
	case "reinhard05":
		return tmo.NewDefaultReinhard05(im), nil
	}

	return nil, hdrerr.Invalidf("tone mapper %q not recognized, wanted one of %s", name, ListOperators())
}
