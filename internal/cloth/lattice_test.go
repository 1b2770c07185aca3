package cloth

import "testing"

func TestLattice_IndexCoordRoundTrip(t *testing.T) {
	dims := []Lattice{{1, 1}, {2, 2}, {3, 5}, {5, 3}, {20, 20}, {1, 7}, {7, 1}}

	for _, lat := range dims {
		seen := make(map[int]bool, lat.Count())
		for col := 0; col < lat.Width; col++ {
			for row := 0; row < lat.Height; row++ {
				i := lat.Index(row, col)
				if i < 0 || i >= lat.Count() {
					t.Fatalf("%dx%d: index(%d,%d)=%d out of range", lat.Width, lat.Height, row, col, i)
				}
				if seen[i] {
					t.Fatalf("%dx%d: index %d assigned twice", lat.Width, lat.Height, i)
				}
				seen[i] = true

				r, c := lat.Coord(i)
				if r != row || c != col {
					t.Errorf("%dx%d: coord(%d)=(%d,%d), want (%d,%d)", lat.Width, lat.Height, i, r, c, row, col)
				}
			}
		}
	}
}

func TestLattice_IndexMatchesHistoricalConvention(t *testing.T) {
	// idx(x, y) = height*y + x on a square net.
	lat := Lattice{Width: 20, Height: 20}
	if got := lat.Index(3, 7); got != 20*7+3 {
		t.Errorf("Index(3,7) = %d, want %d", got, 20*7+3)
	}

	corners := lat.Corners()
	want := [4]int{0, 20 * 19, 19, 20*19 + 19}
	if corners != want {
		t.Errorf("Corners() = %v, want %v", corners, want)
	}
}

func TestLattice_Validate(t *testing.T) {
	tests := []struct {
		name string
		lat  Lattice
		ok   bool
	}{
		{"square", Lattice{4, 4}, true},
		{"single", Lattice{1, 1}, true},
		{"zero width", Lattice{0, 4}, false},
		{"zero height", Lattice{4, 0}, false},
		{"negative", Lattice{-2, 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lat.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestLattice_NeighborOrder(t *testing.T) {
	lat := Lattice{Width: 3, Height: 3}
	center := lat.Index(1, 1)

	got := lat.Neighbors(center)
	want := []int{center - 1, center - 3, center + 1, center + 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d neighbors, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("neighbor %d = %d, want %d", i, got[i], want[i])
		}
	}
}
