package catalog

import "fmt"

// Kind enumerates the operators the harness knows how to validate.
type Kind int

const (
	KindUnknown Kind = iota
	KindConvolution
	KindConvolutionNCHW
	KindDepthwiseConvolution
	KindAveragePool
	KindMaxPool
	KindAdd
	KindGlobalAveragePool
	KindGlobalMaxPool
	KindFullyConnected
	KindMatMul
	KindLayerNorm
	KindRMSNorm
	KindSoftmax
	KindLRN
	KindSiLU
	KindLeakyReLU
	KindPReLU
	KindClip
	KindPad
	KindTranspose
	KindGather
	// KindExternal marks operators declared only in a catalog file.
	KindExternal
)

var kindNames = map[Kind]string{
	KindConvolution:          "convolution",
	KindConvolutionNCHW:      "convolution_nchw",
	KindDepthwiseConvolution: "depthwise_convolution",
	KindAveragePool:          "averagepool",
	KindMaxPool:              "maxpool",
	KindAdd:                  "add",
	KindGlobalAveragePool:    "global_avgpool",
	KindGlobalMaxPool:        "global_maxpool",
	KindFullyConnected:       "fullyconnected",
	KindMatMul:               "matmul",
	KindLayerNorm:            "layer_norm",
	KindRMSNorm:              "rms_norm",
	KindSoftmax:              "softmax",
	KindLRN:                  "lrn",
	KindSiLU:                 "silu",
	KindLeakyReLU:            "leaky_relu",
	KindPReLU:                "prelu",
	KindClip:                 "clip",
	KindPad:                  "pad",
	KindTranspose:            "transpose",
	KindGather:               "gather",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	if k == KindExternal {
		return "external"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindOf maps a built-in operator name to its kind.
func KindOf(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return KindUnknown
}

// ArgStyle is how an oracle script expects to receive a case.
type ArgStyle int

const (
	// ArgsNone passes nothing; the script has one fixed configuration.
	ArgsNone ArgStyle = iota
	// ArgsDTypeVLenVariant passes "<dtype> <vlen> <variant>".
	ArgsDTypeVLenVariant
	// ArgsVariant passes "<variant>" only.
	ArgsVariant
	// ArgsOperator passes the operator name to a multi-operator script.
	ArgsOperator
	// ArgsDriver imports the script as a module and calls one of its
	// functions with the operator name and parameters.
	ArgsDriver
)

var argStyleNames = map[ArgStyle]string{
	ArgsNone:             "none",
	ArgsDTypeVLenVariant: "dtype-vlen-variant",
	ArgsVariant:          "variant",
	ArgsOperator:         "operator",
	ArgsDriver:           "driver",
}

func (a ArgStyle) String() string {
	if n, ok := argStyleNames[a]; ok {
		return n
	}
	return fmt.Sprintf("argstyle(%d)", int(a))
}

func ParseArgStyle(s string) (ArgStyle, error) {
	for a, n := range argStyleNames {
		if n == s {
			return a, nil
		}
	}
	return ArgsNone, fmt.Errorf("unknown oracle argument style %q", s)
}
