package enhance

// repairJSON fixes a malformation some chat models produce in JSON mode:
// object keys missing their opening quote, e.g. `, excerpt":` instead of
// `, "excerpt":`. Anything it cannot recognize is passed through unchanged.
func repairJSON(s string) string {
	src := []rune(s)
	fixed := make([]rune, 0, len(src)+16)

	i := 0
	for i < len(src) {
		ch := src[i]

		if ch == '{' || ch == ',' {
			fixed = append(fixed, ch)
			i++

			for i < len(src) && (src[i] == ' ' || src[i] == '\n' || src[i] == '\t') {
				fixed = append(fixed, src[i])
				i++
			}

			// A bare letter here means the key lost its opening quote.
			if i < len(src) && src[i] != '"' && isASCIILetter(src[i]) {
				keyStart := i
				for i < len(src) && (isASCIILetter(src[i]) || src[i] == '_' || src[i] == ' ') {
					i++
				}
				keyEnd := i

				if i+1 < len(src) && src[i] == '"' && src[i+1] == ':' {
					fixed = append(fixed, '"')
					for j := keyStart; j < keyEnd; j++ {
						if src[j] != ' ' || (j > keyStart && j < keyEnd-1) {
							fixed = append(fixed, src[j])
						}
					}
					continue
				}
				for j := keyStart; j < i; j++ {
					fixed = append(fixed, src[j])
				}
			}
		} else {
			fixed = append(fixed, ch)
			i++
		}
	}

	return string(fixed)
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
