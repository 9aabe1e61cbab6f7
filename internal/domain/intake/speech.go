package intake

import (
	"strconv"
	"strings"
)

// fillerTokens is the fixed vocabulary stripped from voice transcripts.
// Matching is case-insensitive on whole tokens only.
var fillerTokens = map[string]bool{
	"uh": true, "uhh": true, "uhm": true,
	"um": true, "umm": true, "erm": true, "er": true,
	"like": true,
}

// fillerPhrases are multi-token fillers removed before tokenization
var fillerPhrases = []string{"you know", "i mean"}

// numberWords maps spoken number words to their value. Multipliers are
// flagged so that "fifty thousand" composes to 50000 rather than 50 1000.
type numberWord struct {
	value      int64
	multiplier bool
}

var numberWords = map[string]numberWord{
	"zero": {0, false}, "one": {1, false}, "two": {2, false}, "three": {3, false},
	"four": {4, false}, "five": {5, false}, "six": {6, false}, "seven": {7, false},
	"eight": {8, false}, "nine": {9, false}, "ten": {10, false},
	"eleven": {11, false}, "twelve": {12, false}, "thirteen": {13, false},
	"fourteen": {14, false}, "fifteen": {15, false}, "sixteen": {16, false},
	"seventeen": {17, false}, "eighteen": {18, false}, "nineteen": {19, false},
	"twenty": {20, false}, "thirty": {30, false}, "forty": {40, false},
	"fifty": {50, false}, "sixty": {60, false}, "seventy": {70, false},
	"eighty": {80, false}, "ninety": {90, false},
	"hundred": {100, true}, "thousand": {1000, true},
	"million": {1_000_000, true}, "billion": {1_000_000_000, true},
}

// NormalizeSpeech cleans a raw voice transcript before intent
// extraction: filler tokens are stripped and spoken number phrases are
// rewritten into digits. Phrases are consumed longest-match-first, so
// "twenty five thousand" becomes 25000 and is never partially
// substituted. Applied to the voice modality only.
func NormalizeSpeech(transcript string) string {
	s := strings.TrimSpace(transcript)
	if s == "" {
		return ""
	}

	lower := strings.ToLower(s)
	for _, phrase := range fillerPhrases {
		for {
			i := strings.Index(lower, phrase)
			if i < 0 {
				break
			}
			s = s[:i] + s[i+len(phrase):]
			lower = lower[:i] + lower[i+len(phrase):]
		}
	}

	tokens := strings.Fields(s)
	out := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); {
		word := stripTokenPunct(strings.ToLower(tokens[i]))

		if fillerTokens[word] {
			i++
			continue
		}

		if _, ok := lookupNumberWord(word); ok {
			// Consume the longest run of number words starting here.
			j := i
			for j < len(tokens) {
				w := stripTokenPunct(strings.ToLower(tokens[j]))
				if _, ok := lookupNumberWord(w); ok {
					j++
					continue
				}
				// "and" joins number words ("one hundred and fifty")
				// only when number words continue after it.
				if w == "and" && j+1 < len(tokens) {
					next := stripTokenPunct(strings.ToLower(tokens[j+1]))
					if _, ok := lookupNumberWord(next); ok {
						j++
						continue
					}
				}
				break
			}
			out = append(out, strconv.FormatInt(phraseToNumber(tokens[i:j]), 10))
			i = j
			continue
		}

		out = append(out, tokens[i])
		i++
	}

	return strings.Join(out, " ")
}

// lookupNumberWord resolves a token, including hyphenated compounds
// like "twenty-five", to number words.
func lookupNumberWord(token string) ([]numberWord, bool) {
	if w, ok := numberWords[token]; ok {
		return []numberWord{w}, true
	}
	if strings.Contains(token, "-") {
		parts := strings.Split(token, "-")
		words := make([]numberWord, 0, len(parts))
		for _, p := range parts {
			w, ok := numberWords[p]
			if !ok {
				return nil, false
			}
			words = append(words, w)
		}
		return words, true
	}
	return nil, false
}

// phraseToNumber folds a run of spoken number tokens into one value
func phraseToNumber(tokens []string) int64 {
	var total, current int64
	for _, t := range tokens {
		word := stripTokenPunct(strings.ToLower(t))
		if word == "and" {
			continue
		}
		words, ok := lookupNumberWord(word)
		if !ok {
			continue
		}
		for _, w := range words {
			if w.multiplier {
				if current == 0 {
					current = 1
				}
				current *= w.value
				if w.value >= 1000 {
					total += current
					current = 0
				}
			} else {
				current += w.value
			}
		}
	}
	return total + current
}

// stripTokenPunct trims leading/trailing punctuation a transcript may
// attach to a word ("fifty," / "consulting.").
func stripTokenPunct(token string) string {
	return strings.Trim(token, ".,;:!?\"'")
}
