package pdfpage

// TextRun is one positioned, atomic fragment of text reported by the
// page reader. X and Y are the run's origin in the page's native
// bottom-up coordinate space; Width and Height are its extent. Runs are
// unordered on input: reading order is reconstructed from geometry.
type TextRun struct {
	Text   string
	X, Y   float64
	Width  float64
	Height float64
}
