package intake

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
)

var (
	intentKeywords = map[string]bool{"invoice": true, "bill": true, "charge": true}

	amountPattern = regexp.MustCompile(`(₦|\$|€|£)?\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	phonePattern  = regexp.MustCompile(`\+?[0-9][0-9-]{8,13}[0-9]`)
	numericToken  = regexp.MustCompile(`^[₦$€£]?[0-9][0-9,.]*$`)

	dueInDaysPattern = regexp.MustCompile(`(?i)\bdue\s+in\s+([0-9]+)\s+days?\b`)
)

// ExtractIntent parses a free-form message into a structured extraction
// result. It never returns an error: when no billing intent is present
// the result carries NoIntent with a failure reason, and missing fields
// lower the confidence instead of failing the extraction.
func ExtractIntent(text string, modality Modality) ExtractionResult {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return NoIntentResult(modality, raw, "empty message")
	}

	tokens := strings.Fields(raw)
	intentIdx := -1
	for i, t := range tokens {
		if intentKeywords[stripTokenPunct(strings.ToLower(t))] {
			intentIdx = i
			break
		}
	}
	if intentIdx < 0 {
		return NoIntentResult(modality, raw, "no billing keyword found")
	}

	r := ExtractionResult{
		Modality: modality,
		RawText:  raw,
		Currency: valueobject.DefaultCurrency,
	}

	amountIdx := extractAmount(tokens, intentIdx, &r)
	extractCustomer(tokens, intentIdx, amountIdx, &r)
	extractDescription(tokens, amountIdx, &r)
	extractPhone(raw, &r)
	extractDueDate(raw, &r)

	r.Confidence = scoreConfidence(r)
	return r
}

// extractAmount finds the first monetary token after the intent keyword
// and resolves the currency from an adjacent symbol or keyword. Returns
// the token index of the amount, or -1.
func extractAmount(tokens []string, intentIdx int, r *ExtractionResult) int {
	for i := intentIdx + 1; i < len(tokens); i++ {
		tok := stripTokenPunct(tokens[i])
		if !numericToken.MatchString(tok) {
			continue
		}
		m := amountPattern.FindStringSubmatch(tok)
		if m == nil {
			continue
		}
		amt, err := decimal.NewFromString(strings.ReplaceAll(m[2], ",", ""))
		if err != nil || !amt.IsPositive() {
			continue
		}
		r.Amount = amt
		if m[1] != "" {
			if c, ok := valueobject.CurrencyFromKeyword(m[1]); ok {
				r.Currency = c
			}
		} else if i+1 < len(tokens) {
			next := stripTokenPunct(strings.ToLower(tokens[i+1]))
			if c, ok := valueobject.CurrencyFromKeyword(next); ok {
				r.Currency = c
			}
		}
		return i
	}
	return -1
}

// extractCustomer takes the tokens between the intent keyword and the
// amount as the customer name, skipping a leading "for".
func extractCustomer(tokens []string, intentIdx, amountIdx int, r *ExtractionResult) {
	end := amountIdx
	if end < 0 {
		end = len(tokens)
	}
	start := intentIdx + 1
	if start < end && strings.EqualFold(stripTokenPunct(tokens[start]), "for") {
		start++
	}
	var name []string
	for i := start; i < end; i++ {
		tok := stripTokenPunct(tokens[i])
		if numericToken.MatchString(tok) {
			break
		}
		// Phone numbers sit between the name and the amount.
		if strings.ContainsAny(tok, "0123456789") {
			continue
		}
		name = append(name, tok)
	}
	r.CustomerName = strings.Join(name, " ")
}

// extractDescription takes the text after the first "for" following the
// amount. Currency keywords between the amount and "for" are skipped.
func extractDescription(tokens []string, amountIdx int, r *ExtractionResult) {
	if amountIdx < 0 {
		return
	}
	for i := amountIdx + 1; i < len(tokens); i++ {
		if strings.EqualFold(stripTokenPunct(tokens[i]), "for") {
			if i+1 < len(tokens) {
				r.Description = stripTokenPunct(strings.Join(tokens[i+1:], " "))
			}
			return
		}
	}
}

func extractPhone(raw string, r *ExtractionResult) {
	if m := phonePattern.FindString(raw); m != "" {
		digits := strings.Map(func(c rune) rune {
			if c >= '0' && c <= '9' || c == '+' {
				return c
			}
			return -1
		}, m)
		// Amounts also match the pattern; require phone-like length.
		if n := len(strings.TrimPrefix(digits, "+")); n >= 10 && n <= 15 {
			r.CustomerPhone = digits
		}
	}
}

func extractDueDate(raw string, r *ExtractionResult) {
	lower := strings.ToLower(raw)
	now := time.Now().UTC().Truncate(24 * time.Hour)
	switch {
	case strings.Contains(lower, "due tomorrow"):
		d := now.AddDate(0, 0, 1)
		r.DueDate = &d
	case strings.Contains(lower, "due next week"):
		d := now.AddDate(0, 0, 7)
		r.DueDate = &d
	default:
		if m := dueInDaysPattern.FindStringSubmatch(raw); m != nil {
			if days, err := strconv.Atoi(m[1]); err == nil && days > 0 {
				d := now.AddDate(0, 0, days)
				r.DueDate = &d
			}
		}
	}
}
