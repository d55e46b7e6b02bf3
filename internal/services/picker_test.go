package services

import "testing"

func TestSeededPickerIsDeterministic(t *testing.T) {
	a, b := NewSeededPicker(42), NewSeededPicker(42)
	for i := 0; i < 50; i++ {
		x, err := a.Pick(10)
		if err != nil {
			t.Fatal(err)
		}
		y, _ := b.Pick(10)
		if x != y {
			t.Fatalf("pick %d diverged: %d vs %d", i, x, y)
		}
	}
}

func TestPickersStayInRange(t *testing.T) {
	for name, p := range map[string]Picker{
		"seeded": NewSeededPicker(7),
		"crypto": NewCryptoPicker(),
	} {
		t.Run(name, func(t *testing.T) {
			seen := make(map[int]bool)
			for i := 0; i < 200; i++ {
				v, err := p.Pick(3)
				if err != nil {
					t.Fatal(err)
				}
				if v < 0 || v >= 3 {
					t.Fatalf("Pick(3) = %d", v)
				}
				seen[v] = true
			}
			if len(seen) != 3 {
				t.Errorf("only saw %v in 200 picks", seen)
			}
			if _, err := p.Pick(0); err == nil {
				t.Error("Pick(0) should fail")
			}
		})
	}
}
