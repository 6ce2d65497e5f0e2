package projective

import (
	"errors"
	"testing"
)

func TestAdjugate(t *testing.T) {
	m := Matrix3{2, -1, 3, 0.5, 4, -2, 1, 1, 5}
	det := m.Determinant()
	p := m.Mul(m.Adjugate())
	for i := range p {
		want := 0.0
		if i%4 == 0 {
			want = det
		}
		if !near(p[i], want, 1e-12) {
			t.Fatalf("m · adj(m) = %v, want %v·I", p, det)
		}
	}
}

func TestDeterminant(t *testing.T) {
	if det := Identity3().Determinant(); det != 1 {
		t.Fatalf("det(I) = %v", det)
	}
	singular := Matrix3{1, 2, 3, 2, 4, 6, 0, 1, 1}
	if det := singular.Determinant(); det != 0 {
		t.Fatalf("det(singular) = %v", det)
	}
}

func TestMulComposition(t *testing.T) {
	translate := Matrix3{1, 0, 5, 0, 1, -3, 0, 0, 1}
	scale := Matrix3{2, 0, 0, 0, 4, 0, 0, 0, 1}

	// scale first, then translate
	m := translate.Mul(scale)
	got, err := m.Apply(Pt(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got != Pt(7, 1) {
		t.Fatalf("Apply = %v, want (7, 1)", got)
	}
}

func TestApplyAtInfinity(t *testing.T) {
	m := Matrix3{1, 0, 0, 0, 1, 0, 1, 0, 0}
	if _, err := m.Apply(Pt(0, 5)); !errors.Is(err, ErrDegenerateGeometry) {
		t.Fatalf("err = %v, want ErrDegenerateGeometry", err)
	}
}

func TestEmbedHomographyRoundTrip(t *testing.T) {
	h := Matrix3{1, 2, 3, 4, 5, 6, 7, 8, 9}
	m := h.Embed()
	if m.Homography() != h {
		t.Fatalf("Homography() = %v, want %v", m.Homography(), h)
	}
	rows := m.Rows()
	if rows[2] != [4]float64{0, 0, 1, 0} {
		t.Errorf("z row = %v", rows[2])
	}
	for r := range rows {
		if r != 2 && rows[r][2] != 0 {
			t.Errorf("z column at row %d = %v", r, rows[r][2])
		}
	}
	if rows[3] != [4]float64{7, 8, 0, 9} {
		t.Errorf("w row = %v", rows[3])
	}
}

func TestCSS(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix4
		want string
	}{
		{
			"identity",
			Identity4(),
			"matrix3d(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1)",
		},
		{
			"translation",
			Matrix3{1, 0, 10, 0, 1, 20, 0, 0, 1}.Embed(),
			"matrix3d(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 10, 20, 0, 1)",
		},
		{
			"perspective",
			Matrix3{1, 0.5, 0, 0, 2, 0, 0.25, -0.125, 1}.Embed(),
			"matrix3d(1, 0, 0, 0.25, 0.5, 2, 0, -0.125, 0, 0, 1, 0, 0, 0, 0, 1)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.CSS(); got != tt.want {
				t.Errorf("CSS() = %q, want %q", got, tt.want)
			}
		})
	}
}
