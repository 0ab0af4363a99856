package trainer

// Label returns the display label of a sequence index: a..z, then aa, ab and
// so on. Negative indices have no label and render as "-".
func Label(index int) string {
	if index < 0 {
		return "-"
	}
	var buf [16]byte
	pos := len(buf)
	for {
		pos--
		buf[pos] = byte('a' + index%26)
		index = index/26 - 1
		if index < 0 {
			break
		}
	}
	return string(buf[pos:])
}
