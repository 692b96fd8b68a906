package mainloop

type sourceHeap []*source

func (h *sourceHeap) Len() int { return len(*h) }
func (h *sourceHeap) Less(i, j int) bool {
	if (*h)[i].due.Equal((*h)[j].due) {
		return (*h)[i].id < (*h)[j].id
	}
	return (*h)[i].due.Before((*h)[j].due)
}
func (h *sourceHeap) Swap(i, j int) {
	(*h)[i], (*h)[j] = (*h)[j], (*h)[i]
}

func (h *sourceHeap) Push(x interface{}) {
	*h = append(*h, x.(*source))
}

func (h *sourceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}
