package grid

import "testing"

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		index, cols  int
		wantX, wantY int
	}{
		{0, 64, 0, 0},
		{63, 64, 63, 0},
		{64, 64, 0, 1},
		{130, 64, 2, 2},
		{2047, 64, 63, 31},

		{0, 8, 0, 0},
		{7, 8, 7, 0},
		{8, 8, 0, 1},
		{39, 8, 7, 4},
	}

	for _, tc := range tests {
		x, y := GetGridCoords(tc.index, tc.cols)
		if x != tc.wantX || y != tc.wantY {
			t.Errorf("GetGridCoords(%d, %d): expected (%d, %d), got (%d, %d)",
				tc.index, tc.cols, tc.wantX, tc.wantY, x, y)
		}
	}
}

func TestGetIndexInvertsCoords(t *testing.T) {
	const cols = 64
	for index := 0; index < cols*32; index++ {
		x, y := GetGridCoords(index, cols)
		if got := GetIndex(x, y, cols); got != index {
			t.Fatalf("GetIndex(%d, %d): expected %d, got %d", x, y, index, got)
		}
	}
}
