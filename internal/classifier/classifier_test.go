package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_TableEntries(t *testing.T) {
	tests := []struct {
		name   string
		floors [2]int
		lines  string
		want   string
	}{
		{"low floors two bed", [2]int{15, 16}, "AEFL", "2/2"},
		{"low floors one bed", [2]int{15, 16}, "BCD", "1/1"},
		{"low floors studio", [2]int{15, 16}, "G", "0/1"},
		{"mid floors two bed", [2]int{17, 38}, "AEFL", "2/2"},
		{"mid floors one bed", [2]int{17, 38}, "BCDHJK", "1/1"},
		{"mid floors studio", [2]int{17, 38}, "G", "0/1"},
		{"high floors two bed", [2]int{41, 68}, "ABCH", "2/2"},
		{"high floors one bed", [2]int{41, 68}, "GJF", "1/1"},
		{"high floors three two", [2]int{41, 68}, "E", "3/2"},
		{"high floors three three", [2]int{41, 68}, "D", "3/3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for floor := tt.floors[0]; floor <= tt.floors[1]; floor++ {
				for i := 0; i < len(tt.lines); i++ {
					got, ok := Classify(floor, tt.lines[i])
					assert.True(t, ok, "floor %d line %c", floor, tt.lines[i])
					assert.Equal(t, tt.want, got.String(), "floor %d line %c", floor, tt.lines[i])
				}
			}
		})
	}
}

func TestClassify_MechanicalFloors(t *testing.T) {
	for _, floor := range []int{39, 40} {
		for line := byte('A'); line <= 'Z'; line++ {
			_, ok := Classify(floor, line)
			assert.False(t, ok, "floor %d line %c", floor, line)
		}
	}
}

func TestClassify_OutOfRange(t *testing.T) {
	for _, floor := range []int{0, 1, 14, 69, 99} {
		_, ok := Classify(floor, 'A')
		assert.False(t, ok, "floor %d", floor)
	}
}

func TestClassify_UnknownLines(t *testing.T) {
	_, ok := Classify(15, 'H')
	assert.False(t, ok)

	_, ok = Classify(20, 'M')
	assert.False(t, ok)

	_, ok = Classify(50, 'K')
	assert.False(t, ok)

	// Lower case letters are not in the table.
	_, ok = Classify(20, 'a')
	assert.False(t, ok)
}

func TestClassifyUnit(t *testing.T) {
	got, ok := ClassifyUnit("15", "A")
	assert.True(t, ok)
	assert.Equal(t, UnitType{Beds: "2", Baths: "2"}, got)

	got, ok = ClassifyUnit("42", "D")
	assert.True(t, ok)
	assert.Equal(t, "3/3", got.String())

	_, ok = ClassifyUnit("PH", "A")
	assert.False(t, ok)

	_, ok = ClassifyUnit("20", "")
	assert.False(t, ok)

	_, ok = ClassifyUnit("20", "AB")
	assert.False(t, ok)
}
