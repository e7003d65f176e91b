package outline

// nextSubsection returns the id following id in the sequence
// a, b, ... z, aa, ab, ... az, ba, ... zz, aaa (bijective base 26).
func nextSubsection(id string) string {
	b := []byte(id)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 'z' {
			b[i]++
			return string(b)
		}
		b[i] = 'a'
	}
	return "a" + string(b)
}

// subsectionLess orders subsection ids the way they are assigned:
// shorter ids first, then alphabetically.
func subsectionLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
