package images

// NumericLess orders image names for playback. Names that both start with a
// decimal integer compare by that integer, so "2" sorts before "10"; the
// lexical comparison breaks ties and handles everything else. The order is
// stable across runs for the same directory contents.
func NumericLess(a, b string) bool {
	na, aok := leadingInt(a)
	nb, bok := leadingInt(b)
	if aok && bok && na != nb {
		return na < nb
	}
	return a < b
}

// leadingInt parses the decimal integer prefix of s. Overflow-prone names
// (20+ digits) fall back to lexical ordering.
func leadingInt(s string) (int64, bool) {
	var n int64
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		if n > (1<<62)/10 {
			return 0, false
		}
		n = n*10 + int64(s[i]-'0')
		i++
	}
	if i == 0 {
		return 0, false
	}
	return n, true
}
