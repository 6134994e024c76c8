package match

// soundexCode maps an uppercase ASCII letter to its Soundex digit,
// or 0 for vowels and the letters that carry no code.
func soundexCode(c byte) byte {
	switch c {
	case 'B', 'F', 'P', 'V':
		return '1'
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return '2'
	case 'D', 'T':
		return '3'
	case 'L':
		return '4'
	case 'M', 'N':
		return '5'
	case 'R':
		return '6'
	}
	return 0
}

// Soundex returns the four-character American Soundex code for s.
// Non-ASCII-letter input characters are skipped; an input with no
// letters yields "0000".
func Soundex(s string) string {
	var first byte
	var code [4]byte
	n := 0

	// prev tracks the code of the previous letter. Vowels and the
	// uncoded letters carry code 0, so a repeated digit separated by
	// a vowel is emitted again.
	var prev byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			continue
		}
		d := soundexCode(c)
		if first == 0 {
			first = c
			code[0] = c
			n = 1
			prev = d
			continue
		}
		if d != 0 && d != prev {
			code[n] = d
			n++
			if n == 4 {
				break
			}
		}
		prev = d
	}

	if first == 0 {
		return "0000"
	}
	for n < 4 {
		code[n] = '0'
		n++
	}
	return string(code[:])
}
