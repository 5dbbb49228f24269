package sample

func sumAbove(xs []int, limit int) int {
	n := 0
	for _, x := range xs {
		if x > limit {
			n += x
		}
	}
	return n
}

func totalOver(ys []int, floor int) int {
	m := 0
	for _, y := range ys {
		if y > floor {
			m += y
		}
	}
	return m
}
