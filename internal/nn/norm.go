package nn

import (
	"github.com/layernet-ml/layernet/internal/tensor"
)

// rowNormEps keeps the row-normalization denominator away from zero so
// an all-zero row maps to an all-zero row instead of NaN.
const rowNormEps = 1e-6

// RowNormalize scales each row of a 2D tensor to (approximately) unit
// Euclidean norm: x[i] / (||x[i]|| + eps).
func RowNormalize[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if len(x.Shape()) != 2 {
		panic("nn: RowNormalize requires a 2D tensor")
	}
	norms := x.Mul(x).SumDim(1, true).Sqrt().AddScalar(rowNormEps)
	return x.Div(norms)
}
