package router

import (
	"context"
	"strings"
)

// KeywordClassifier is the deterministic fallback: a fixed keyword table in
// priority order. It never errors; anything unmatched becomes clarify.
type KeywordClassifier struct{}

type keywordRule struct {
	category string
	words    []string
}

// Order matters: dispute before billing so "faturama itiraz" is not consumed
// by the billing rule, plan change before subscription view for the same
// reason.
var keywordRules = []keywordRule{
	{category: "end", words: []string{"görüşürüz", "hoşça kal", "hoşçakal", "teşekkürler bu kadar", "kapat"}},
	{category: "registration", words: []string{"yeni müşteri", "kayıt ol", "kaydol", "abone olmak"}},
	{category: "dispute", words: []string{"itiraz"}},
	{category: "plan_change", words: []string{"paket değiş", "tarife değiş", "pakete geç", "paketimi değiştir"}},
	{category: "subscription_view", words: []string{"paketim", "tarifem", "aboneliğim", "kotam"}},
	{category: "billing_view", words: []string{"fatura", "borç", "ödeme"}},
	{category: "appointment", words: []string{"randevu", "arıza", "teknik", "internet sorun", "internetim", "modem"}},
	{category: "faq", words: []string{"nasıl", "nedir", "ne kadar", "roaming", "yurt dışı"}},
}

func (c *KeywordClassifier) Classify(ctx context.Context, userText, convContext string, authenticated bool) (Category, error) {
	lowered := strings.ToLower(userText)
	for _, rule := range keywordRules {
		for _, w := range rule.words {
			if strings.Contains(lowered, w) {
				return Category{Name: rule.category}, nil
			}
		}
	}
	return Category{Name: "clarify"}, nil
}
