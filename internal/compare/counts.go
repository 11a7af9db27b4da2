package compare

// Counts accumulates classifications across a run.
type Counts struct {
	TP  int `json:"tp"`
	FP1 int `json:"fp1"`
	FP2 int `json:"fp2"`
	FN1 int `json:"fn1"`
	FN2 int `json:"fn2"`
}

// Add counts every classification.
func (c *Counts) Add(cls []Classification) {
	for _, cl := range cls {
		switch cl.Outcome {
		case TP:
			c.TP++
		case FP1:
			c.FP1++
		case FP2:
			c.FP2++
		case FN1:
			c.FN1++
		case FN2:
			c.FN2++
		}
	}
}

// Get returns the count for one outcome.
func (c Counts) Get(o Outcome) int {
	switch o {
	case TP:
		return c.TP
	case FP1:
		return c.FP1
	case FP2:
		return c.FP2
	case FN1:
		return c.FN1
	case FN2:
		return c.FN2
	}
	return 0
}

// Precision is tp / (tp + fp1 + fp2).
func (c Counts) Precision() float64 {
	return ratio(c.TP, c.TP+c.FP1+c.FP2)
}

// Recall is tp / (tp + fn1 + fn2).
func (c Counts) Recall() float64 {
	return ratio(c.TP, c.TP+c.FN1+c.FN2)
}

// F1 is the harmonic mean of precision and recall.
func (c Counts) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
