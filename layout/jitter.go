package layout

import "github.com/ByLCY/calligram/compose"

// Position 是逐字推进的抖动状态。坐标与角度按原始实现截断为整数。
type Position struct {
	X        int `json:"x"`
	Y        int `json:"y"`
	Rotation int `json:"rotation"`
}

// Jitter 是逐字随机游走模型：
//
//	x' = x + CellWidth × U(0, 1)
//	y' = y
//	rotation' = rotation − Step × U(−1, 1)
//
// 旋转增量会累积，整行的旋转方差随行长增长，不做截断。
type Jitter struct {
	CellWidth float64
	Step      float64
}

// Next 推进一步，依次抽取 x 增量与旋转增量。
func (j Jitter) Next(p Position, rng compose.Rand) Position {
	x := float64(p.X) + j.CellWidth*rng.Float64()
	rot := float64(p.Rotation) + -j.Step*compose.Uniform(rng, -1, 1)
	return Position{X: int(x), Y: p.Y, Rotation: int(rot)}
}
