package parsort

// Merge combines two individually sorted slices into a new sorted slice.
// Neither input is modified. When every element of left orders before or
// equal to the first element of right, the halves are concatenated after a
// single comparison. Otherwise a two-pointer merge runs, taking from left on
// ties so that equal elements keep their relative order.
func Merge[E any](left, right []E, cmp CompareFunc[E]) []E {
	out := make([]E, 0, len(left)+len(right))
	if len(left) == 0 || len(right) == 0 {
		out = append(out, left...)
		return append(out, right...)
	}

	// already ordered relative to each other
	if cmp(left[len(left)-1], right[0]) <= 0 {
		out = append(out, left...)
		return append(out, right...)
	}

	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if cmp(right[j], left[i]) < 0 {
			out = append(out, right[j])
			j++
		} else {
			out = append(out, left[i])
			i++
		}
	}
	// at most one of these has anything left
	out = append(out, left[i:]...)
	return append(out, right[j:]...)
}

// insertionSort returns a sorted copy of data. It is stable.
func insertionSort[E any](data []E, cmp CompareFunc[E]) []E {
	out := make([]E, len(data))
	copy(out, data)
	for i := 1; i < len(out); i++ {
		x := out[i]
		j := i
		for j > 0 && cmp(out[j-1], x) > 0 {
			out[j] = out[j-1]
			j--
		}
		out[j] = x
	}
	return out
}

// isLeaf reports whether a span of length n stops the recursion.
func isLeaf(n, threshold int) bool {
	return n < threshold || n < 2
}

// mergeSort is the sequential engine: split at n/2 until spans are leaves,
// insertion sort the leaves and merge back up. It also sorts the leaves of
// every concurrent strategy.
func mergeSort[E any](data []E, cmp CompareFunc[E], threshold int) []E {
	if isLeaf(len(data), threshold) {
		return insertionSort(data, cmp)
	}
	half := len(data) / 2
	left := mergeSort(data[:half], cmp, threshold)
	right := mergeSort(data[half:], cmp, threshold)
	return Merge(left, right, cmp)
}

// guard runs fn and turns a panic raised by the comparison function into a
// *ComparisonError.
func guard[E any](op string, fn func() []E) (out []E, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, NewComparisonError(r, op)
		}
	}()
	return fn(), nil
}
