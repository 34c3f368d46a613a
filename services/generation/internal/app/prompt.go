package app

import (
	"fmt"
	"strings"

	"bhashagen/pkg/domain"
)

// SystemPrompt is the fixed system instruction sent with every generation.
const SystemPrompt = "You are an expert marketing content creator specializing in Indian regional languages and cultural contexts. You understand local business needs, festivals, cultural nuances, and create engaging content that resonates with Indian audiences. Always write in the requested Indian regional language using proper script and cultural references."

// styleDirectives maps each content type to its stylistic directive.
// Unknown content types get no extra directive.
var styleDirectives = map[string]string{
	domain.ContentSocialMediaPost:    "Include relevant hashtags and emojis. Keep it under 280 characters for better engagement.",
	domain.ContentWhatsAppMessage:    "Keep it personal and conversational, suitable for WhatsApp Business. Use appropriate emojis.",
	domain.ContentProductDescription: "Highlight key features and benefits. Make it compelling for online listings.",
	domain.ContentAdCopy:             "Create urgency and highlight the main benefit. Include a clear call-to-action.",
	domain.ContentEmailCampaign:      "Include a compelling subject line and clear call-to-action. Make it professional yet warm.",
}

// BuildPrompt assembles the user prompt for a content request. Pure string
// concatenation in a fixed clause order.
func BuildPrompt(req domain.ContentRequest) string {
	var b strings.Builder

	contentType := strings.ReplaceAll(req.ContentType, "_", " ")
	fmt.Fprintf(&b, "Write a %s in %s for %q", contentType, req.Language, req.ProductService)

	if req.KeyMessage != "" {
		fmt.Fprintf(&b, " with the key message: %q", req.KeyMessage)
	}
	if req.TargetAudience != "" {
		fmt.Fprintf(&b, " targeting %s", req.TargetAudience)
	}
	if req.FestivalContext != "" {
		fmt.Fprintf(&b, " for %s festival", req.FestivalContext)
	}

	fmt.Fprintf(&b, ". Make it %s, culturally relevant for Indian customers, and engaging for local businesses. ", req.Tone)

	if directive, ok := styleDirectives[req.ContentType]; ok {
		b.WriteString(directive)
	}

	fmt.Fprintf(&b, " Use proper %s script and ensure cultural sensitivity for Indian markets.", req.Language)
	return b.String()
}
