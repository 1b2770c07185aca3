package viz

import "testing"

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	if got := c.String(); got != "⠀⠀\n" {
		t.Fatalf("blank canvas = %q", got)
	}

	c.Set(0, 0)
	c.Set(3, 3)
	if !c.Lit(0, 0) || !c.Lit(3, 3) {
		t.Error("set dots should be lit")
	}
	if got := c.String(); got != "⠁⢀\n" {
		t.Errorf("canvas = %q", got)
	}

	c.Unset(0, 0)
	if c.Lit(0, 0) {
		t.Error("unset dot still lit")
	}
	if c.Count() != 1 {
		t.Errorf("expected 1 lit dot, got %d", c.Count())
	}
}

func TestCanvasOutOfRange(t *testing.T) {
	c := NewCanvas(2, 2)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 8}} {
		c.Set(p[0], p[1])
		if c.Lit(p[0], p[1]) {
			t.Errorf("dot %v outside the canvas reported lit", p)
		}
	}
	if c.Count() != 0 {
		t.Errorf("out of range sets should be ignored, got %d dots", c.Count())
	}
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           int
	}{
		{"horizontal", 0, 0, 5, 0, 6},
		{"vertical", 1, 7, 1, 0, 8},
		{"diagonal", 0, 0, 3, 3, 4},
		{"point", 2, 2, 2, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(4, 2)
			c.DrawLine(tt.x0, tt.y0, tt.x1, tt.y1)
			if got := c.Count(); got != tt.want {
				t.Errorf("expected %d dots, got %d", tt.want, got)
			}
			if !c.Lit(tt.x0, tt.y0) || !c.Lit(tt.x1, tt.y1) {
				t.Error("endpoints must be lit")
			}
		})
	}
}

func TestMarkAndClear(t *testing.T) {
	c := NewCanvas(4, 4)
	c.Mark(3, 5)
	if c.Count() != 5 {
		t.Errorf("mark should light 5 dots, got %d", c.Count())
	}
	c.Clear()
	if c.Count() != 0 {
		t.Errorf("clear left %d dots", c.Count())
	}
}
