package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusDisabled UserStatus = "disabled"
)

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

type User struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	PasswordHash string           `json:"-"`
	Role         UserRole         `json:"role"`
	Status       UserStatus       `json:"status"`
	Tier         SubscriptionTier `json:"tier"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// ContentRequest carries the form fields a user fills in before generation.
// ProductService, ContentType, Language and Tone are mandatory; the rest are
// optional refinements.
type ContentRequest struct {
	ProductService  string `json:"productService"`
	KeyMessage      string `json:"keyMessage,omitempty"`
	TargetAudience  string `json:"targetAudience,omitempty"`
	ContentType     string `json:"contentType"`
	Language        string `json:"language"`
	Tone            string `json:"tone"`
	FestivalContext string `json:"festivalContext,omitempty"`
}

type ContentItem struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	ContentType     string    `json:"contentType"`
	ProductService  string    `json:"productService"`
	KeyMessage      string    `json:"keyMessage,omitempty"`
	TargetAudience  string    `json:"targetAudience,omitempty"`
	Tone            string    `json:"tone"`
	Language        string    `json:"language"`
	GeneratedText   string    `json:"generatedText"`
	FestivalContext string    `json:"festivalContext,omitempty"`
	IsFavorite      bool      `json:"isFavorite"`
	CreatedAt       time.Time `json:"createdAt"`
}

// UsageRecord counts generations per user per calendar month.
// MonthYear uses the "YYYY-MM" form, e.g. "2026-08".
type UsageRecord struct {
	UserID           string           `json:"userId"`
	MonthYear        string           `json:"monthYear"`
	GenerationCount  int              `json:"generationCount"`
	SubscriptionTier SubscriptionTier `json:"subscriptionTier"`
}

const (
	ContentSocialMediaPost    = "social_media_post"
	ContentProductDescription = "product_description"
	ContentAdCopy             = "ad_copy"
	ContentWhatsAppMessage    = "whatsapp_message"
	ContentEmailCampaign      = "email_campaign"
)

// ContentTypes lists the content formats the product offers, in menu order.
var ContentTypes = []string{
	ContentSocialMediaPost,
	ContentProductDescription,
	ContentAdCopy,
	ContentWhatsAppMessage,
	ContentEmailCampaign,
}

// Languages lists the supported Indian regional languages.
var Languages = []string{
	"Hindi",
	"Tamil",
	"Telugu",
	"Marathi",
	"Bengali",
	"Gujarati",
	"Kannada",
}

var Tones = []string{
	"friendly",
	"professional",
	"exciting",
	"urgent",
	"warm",
}

var Festivals = []string{
	"Diwali",
	"Holi",
	"Eid",
	"Durga Puja",
	"Ganesh Chaturthi",
	"Karva Chauth",
	"Dussehra",
	"Christmas",
	"New Year",
}

func KnownContentType(v string) bool { return contains(ContentTypes, v) }
func KnownLanguage(v string) bool    { return contains(Languages, v) }
func KnownTone(v string) bool        { return contains(Tones, v) }
func KnownFestival(v string) bool    { return contains(Festivals, v) }

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// MonthKey formats t as the usage counter month key.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
