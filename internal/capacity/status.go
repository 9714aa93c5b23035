package capacity

import (
	"strings"

	"capacity-bknd/internal/models"
	"capacity-bknd/internal/normalize"
)

// StatusRule maps a substring of the normalized status text to a category.
type StatusRule struct {
	Substring string
	Category  models.StatusCategory
}

// StatusRules are evaluated in order; the first match wins. Negated
// connection states come first so they never reach the CONNECTED rules.
var StatusRules = []StatusRule{
	{Substring: "DESCONECTADO", Category: models.StatusOther},
	{Substring: "NO CONECTADO", Category: models.StatusOther},
	{Substring: "DISCONNECTED", Category: models.StatusOther},
	{Substring: "NOT CONNECTED", Category: models.StatusOther},
	{Substring: "CONNECTED", Category: models.StatusConnected},
	{Substring: "CONECTADO", Category: models.StatusConnected},
	{Substring: "SCR", Category: models.StatusSCR},
	{Substring: "ICC", Category: models.StatusICC},
}

// ClassifyStatus returns the category of the first rule whose substring
// appears in the status text, or StatusOther.
func ClassifyStatus(text string) models.StatusCategory {
	key := normalize.Key(text)
	for _, r := range StatusRules {
		if strings.Contains(key, r.Substring) {
			return r.Category
		}
	}
	return models.StatusOther
}

// Subtracted reports whether load in this category lowers available capacity.
func Subtracted(c models.StatusCategory) bool {
	switch c {
	case models.StatusConnected, models.StatusICC, models.StatusSCR:
		return true
	}
	return false
}
