package similarity

// Matrix is a square, symmetric similarity matrix over a fixed ordered list
// of texts. Entries are in [0,1] with 1s on the diagonal. A Matrix is built
// once per clustering call and never mutated afterwards.
type Matrix struct {
	Texts  []string    `json:"texts"`
	Values [][]float64 `json:"values"`
}

func newMatrix(texts []string) *Matrix {
	n := len(texts)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1.0
	}
	return &Matrix{Texts: texts, Values: values}
}

// Len returns the number of texts the matrix covers.
func (m *Matrix) Len() int { return len(m.Texts) }

// At returns the similarity between texts i and j.
func (m *Matrix) At(i, j int) float64 { return m.Values[i][j] }

func (m *Matrix) set(i, j int, v float64) {
	m.Values[i][j] = v
	m.Values[j][i] = v
}
