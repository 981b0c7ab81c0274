package finance

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatUSD форматирует сумму в долларах с разделителями разрядов.
func FormatUSD(amount int64) string {
	if amount < 0 {
		return usd.Sprintf("-$%d", -amount)
	}
	return usd.Sprintf("$%d", amount)
}
