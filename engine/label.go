package engine

// 某一轮到达某站点的标号
type label struct {
	kind labelKind
	time int

	// LABEL_ACCESS
	accessDuration int

	// LABEL_TRANSIT
	route     int
	trip      int
	boardPos  int
	alightPos int
	// 上车时使用的标号所在轮次及是否为步行换乘标号
	fromRound int
	fromWalk  bool

	// LABEL_TRANSFER
	fromStop int
	walk     int
}

// 每轮每站两个标号：乘车到达与步行换乘到达
// 换乘标号单独存放，不会覆盖同一轮的乘车标号
type roundLabels struct {
	transit []label
	walk    []label
}

func newRoundLabels(stopCount int) roundLabels {
	r := roundLabels{
		transit: make([]label, stopCount),
		walk:    make([]label, stopCount),
	}
	for i := range r.transit {
		r.transit[i].time = UNREACHED
		r.walk[i].time = UNREACHED
	}
	return r
}
