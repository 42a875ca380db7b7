package screening

import (
	"fmt"
	"strings"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/classify"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
)

var verdictSchema = classify.Schema{
	Type: classify.TypeObject,
	Properties: map[string]*classify.Schema{
		"verified": {Type: classify.TypeBoolean, Description: "True when the listing looks genuine and the price is plausible."},
		"flagged":  {Type: classify.TypeBoolean, Description: "True when the listing shows fraud indicators."},
		"reason":   {Type: classify.TypeString, Description: "Justification, or an explicit statement that there are no concerns."},
	},
	Required: []string{"verified", "flagged", "reason"},
}

var alertsSchema = classify.Schema{
	Type: classify.TypeArray,
	Items: &classify.Schema{
		Type: classify.TypeObject,
		Properties: map[string]*classify.Schema{
			"category": {
				Type:        classify.TypeString,
				Description: "One of: FRAUD, SECURITY, AUTHENTICITY",
				Enum:        []string{string(domain.AlertFraud), string(domain.AlertSecurity), string(domain.AlertAuthenticity)},
			},
			"message": {Type: classify.TypeString},
			"severity": {
				Type:        classify.TypeString,
				Description: "One of: LOW, MEDIUM, HIGH",
				Enum:        []string{string(domain.SeverityLow), string(domain.SeverityMedium), string(domain.SeverityHigh)},
			},
		},
		Required: []string{"category", "message", "severity"},
	},
}

func listingPrompt(d domain.ListingDraft) string {
	var b strings.Builder
	b.WriteString("Analyze this real estate/hotel listing for authenticity and fraud. ")
	fmt.Fprintf(&b, "Check if the price is realistic for the location (%s) and if the description sounds like a scam ", d.Location)
	b.WriteString("(common red flags: too good to be true, urgent pressure, implausible claims, weird grammar).\n")
	b.WriteString("Listing Details:\n")
	fmt.Fprintf(&b, "Title: %s\n", d.Title)
	fmt.Fprintf(&b, "Description: %s\n", d.Description)
	fmt.Fprintf(&b, "Price: %s NGN\n", d.Price.String())
	fmt.Fprintf(&b, "Location: %s\n", d.Location)
	fmt.Fprintf(&b, "Type: %s\n", d.Type)
	return b.String()
}

func logsPrompt(lines []domain.LogLine) string {
	var b strings.Builder
	b.WriteString("As a cybersecurity expert, scan these recent server activity logs for any sign of hacking attempts, ")
	b.WriteString("SQL injections, abusive request patterns or DDoS. Return a list of alerts if found, or an empty list.\n")
	b.WriteString("Logs:\n")
	for _, l := range lines {
		b.WriteString(string(l))
		b.WriteByte('\n')
	}
	return b.String()
}
