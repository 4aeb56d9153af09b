package normalizer

import (
	"fmt"
	"strings"
)

const (
	defaultCurrency = "USD"

	MsgRephrase         = "I apologize, I had trouble understanding that. Could you please rephrase?"
	MsgUnexpectedFormat = "I received an unexpected response format. Please try again."

	msgAskGender      = "To recommend a gift, I need to know the recipient's gender. What is their gender?"
	msgAskAge         = "What is their age?"
	msgAskPreferences = "What are their preferences (e.g., hobbies, interests)?"
	msgNoGifts        = "I couldn't find specific gift recommendations based on the details provided."
	msgRecommend      = "I can recommend some popular products for you."
	msgEmptyCart      = "Your cart has been emptied."
	msgCompareWhich   = "Which products would you like to compare?"
)

func searchMessage(query string, ids []string) string {
	if len(ids) == 0 {
		return fmt.Sprintf("I couldn't find any products related to '%s'.", query)
	}
	return fmt.Sprintf("I found some products related to '%s'. Here are their IDs: %s", query, strings.Join(ids, ", "))
}

func giftMessage(age int, gender, preferences string, ids []string) string {
	if len(ids) == 0 {
		return msgNoGifts
	}
	return fmt.Sprintf("Here are some gift recommendations for a %d year old %s with preferences for %s: %s",
		age, gender, preferences, strings.Join(ids, ", "))
}

func compareMessage(ids []string) string {
	if len(ids) == 0 {
		return msgCompareWhich
	}
	return "Here are the products you asked to compare: " + strings.Join(ids, ", ")
}
