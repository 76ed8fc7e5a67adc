package handlers

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// formatMoney renders whole dollars with digit grouping, e.g. "$1,000" or "-$5".
func formatMoney(n int) string {
	if n < 0 {
		return "-" + moneyPrinter.Sprintf("$%d", -n)
	}
	return moneyPrinter.Sprintf("$%d", n)
}
