package forecast

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var errNotPositiveDefinite = errors.New("normal matrix is not positive definite")

// normalEquations accumulates XᵀX and Xᵀy one row at a time.
type normalEquations struct {
	p   int
	xtx *mat.SymDense
	xty *mat.VecDense
}

func newNormalEquations(p int) *normalEquations {
	return &normalEquations{p: p, xtx: mat.NewSymDense(p, nil), xty: mat.NewVecDense(p, nil)}
}

func (ne *normalEquations) Add(x []float64, y float64) {
	row := mat.NewVecDense(ne.p, x)
	ne.xtx.SymRankOne(ne.xtx, 1, row)
	ne.xty.AddScaledVec(ne.xty, y, row)
}

// Solve returns β minimising ‖y − Xβ‖² + Σ penalty[i]·β[i]².
func (ne *normalEquations) Solve(penalty []float64) ([]float64, error) {
	a := mat.NewSymDense(ne.p, nil)
	a.CopySym(ne.xtx)
	for i := 0; i < ne.p; i++ {
		a.SetSym(i, i, a.At(i, i)+penalty[i]+1e-10)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, errNotPositiveDefinite
	}
	beta := mat.NewVecDense(ne.p, nil)
	if err := chol.SolveVecTo(beta, ne.xty); err != nil {
		// a Condition error still carries a usable solution
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, err
		}
	}
	return beta.RawVector().Data, nil
}
