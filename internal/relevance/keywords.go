package relevance

// PropertyKeywords are terms that tie an item to property management.
var PropertyKeywords = []string{
	"rent", "lease", "tenant", "landlord", "property", "apartment",
	"deposit", "maintenance", "repair", "plumber", "electrician",
	"utilities", "utility", "mortgage", "hoa", "eviction", "sublet",
	"inspection", "renovation", "contractor", "insurance",
}

// FinancialKeywords are terms that tie an item to money movement around a
// property.
var FinancialKeywords = []string{
	"payment", "invoice", "bill", "receipt", "transfer", "paid",
	"due", "overdue", "balance", "charge", "refund", "fee",
}
