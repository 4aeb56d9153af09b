package normalizer

import (
	"regexp"
	"strconv"
	"strings"
)

// priceRe matches "under 100", "over 50 EUR" and similar clauses. Currency
// symbols such as "$" are not part of the pattern: "under $19.99" does not
// match and the text is searched as written.
var priceRe = regexp.MustCompile(`(?i)\b(under|over)\s*(\d+(?:\.\d+)?)(?:\s*(USD|EUR|JPY|GBP|TRY|CAD)\b)?`)

var spaceRe = regexp.MustCompile(`\s+`)

// PriceFilter is the price constraint found in a search query.
type PriceFilter struct {
	Min      *float64
	Max      *float64
	Currency string
	Matched  bool
	// Remainder is the query with the matched clause removed.
	Remainder string
}

// ExtractPriceFilter finds the first price clause in text. Without a match the
// currency is still the default and Remainder is the trimmed input.
func ExtractPriceFilter(text string) PriceFilter {
	pf := PriceFilter{Currency: defaultCurrency, Remainder: strings.TrimSpace(text)}

	loc := priceRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return pf
	}
	amount, err := strconv.ParseFloat(text[loc[4]:loc[5]], 64)
	if err != nil {
		return pf
	}

	pf.Matched = true
	if strings.EqualFold(text[loc[2]:loc[3]], "under") {
		pf.Max = &amount
	} else {
		pf.Min = &amount
	}
	if loc[6] >= 0 {
		pf.Currency = strings.ToUpper(text[loc[6]:loc[7]])
	}
	rest := text[:loc[0]] + " " + text[loc[1]:]
	pf.Remainder = strings.TrimSpace(spaceRe.ReplaceAllString(rest, " "))
	return pf
}
