package engine

import "container/heap"

// maxPriceHeap keeps distinct bid level prices with the highest on top.
// Manipulate through container/heap (Init, Push, Pop, Remove).
type maxPriceHeap []float64

func (h maxPriceHeap) Len() int           { return len(h) }
func (h maxPriceHeap) Less(i, j int) bool { return h[i] > h[j] }
func (h maxPriceHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *maxPriceHeap) Push(x any) { *h = append(*h, x.(float64)) }

func (h *maxPriceHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func (h maxPriceHeap) peek() (float64, bool) {
	if len(h) == 0 {
		return 0, false
	}
	return h[0], true
}

// minPriceHeap keeps distinct ask level prices with the lowest on top.
type minPriceHeap []float64

func (h minPriceHeap) Len() int           { return len(h) }
func (h minPriceHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h minPriceHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minPriceHeap) Push(x any) { *h = append(*h, x.(float64)) }

func (h *minPriceHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func (h minPriceHeap) peek() (float64, bool) {
	if len(h) == 0 {
		return 0, false
	}
	return h[0], true
}

// removePrice drops one price entry from a heap. O(n) scan, but it only runs
// when a whole level empties.
func removePrice(h heap.Interface, prices []float64, price float64) {
	for i, p := range prices {
		if p == price {
			heap.Remove(h, i)
			return
		}
	}
}
