package integrator

// fixedStepper advances y by h and reports how many derivative evaluations
// it used.
type fixedStepper func(s system, y vec, h float64) (vec, int)

func eulerStep(s system, y vec, h float64) (vec, int) {
	return axpy(y, h, s.derivative(y)), 1
}

func heunStep(s system, y vec, h float64) (vec, int) {
	k1 := s.derivative(y)
	k2 := s.derivative(axpy(y, h, k1))

	var out vec
	for i := range y {
		out[i] = y[i] + h/2*(k1[i]+k2[i])
	}
	return out, 2
}

func rk4Step(s system, y vec, h float64) (vec, int) {
	k1 := s.derivative(y)
	k2 := s.derivative(axpy(y, h/2, k1))
	k3 := s.derivative(axpy(y, h/2, k2))
	k4 := s.derivative(axpy(y, h, k3))

	var out vec
	for i := range y {
		out[i] = y[i] + h/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out, 4
}

func stepperFor(m Method) fixedStepper {
	switch m {
	case MethodEuler:
		return eulerStep
	case MethodHeun:
		return heunStep
	case MethodRK4:
		return rk4Step
	}
	return nil
}

func (r *run) integrateFixed(step fixedStepper) error {
	y := r.y
	for k := 1; k <= r.n; k++ {
		h := r.timeAt(k) - r.timeAt(k-1)
		next, evals := step(r.sys, y, h)
		r.stats.Evaluations += evals
		r.stats.Steps++

		t := r.timeAt(k)
		warnings := r.clamp(&next, k, t)
		if err := r.checkConservation(next, k, t); err != nil {
			return err
		}
		y = next
		r.emit(t, y, warnings)
	}
	return nil
}
