package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/classifier_full.txt
	classifierFullRaw string

	//go:embed template/classifier_restricted.txt
	classifierRestrictedRaw string

	//go:embed template/faq.txt
	faqRaw string
)

// ClassifierFull is the routing instruction set for authenticated sessions.
func ClassifierFull() string {
	return strings.TrimSpace(classifierFullRaw)
}

// ClassifierRestricted is the routing instruction set for unauthenticated
// sessions.
func ClassifierRestricted() string {
	return strings.TrimSpace(classifierRestrictedRaw)
}

// FAQ is the grounding instruction set for knowledge-base answers.
func FAQ() string {
	return strings.TrimSpace(faqRaw)
}
