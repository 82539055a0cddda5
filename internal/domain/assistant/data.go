package assistant

import "github.com/shopspring/decimal"

const (
	welcomeMessage = "Hi there! 👋 I'm K-MEDI AI! Pick a category below or just tell me what you're looking for 😊"
	fallbackReply  = "I'd love to help! 😊 Tell me what you're looking for and I'll find the best match!"
)

// replies are checked in order; the first keyword hit wins.
var replies = []struct {
	keywords []string
	text     string
}{
	{
		keywords: []string{"botox", "filler", "beauty"},
		text:     "Great choice! ✨ Korea's beauty treatments are world-famous! Here are our top picks in Gangnam 🎉",
	},
	{
		keywords: []string{"nose", "plastic", "surgery"},
		text:     "Awesome! 🏥 Korean plastic surgery is top-notch, 50,000+ successful procedures! Here are our best packages 👇",
	},
	{
		keywords: []string{"dental", "teeth"},
		text:     "Smart pick! 🦷 Korean dental care is amazing at great prices! Check these out 👇",
	},
	{
		keywords: []string{"checkup", "health"},
		text:     "Love that! 🩺 Korean health checkups are super thorough, MRI to genetic testing! Here are our top picks 👇",
	},
	{
		keywords: []string{"price", "cost", "budget"},
		text:     "Great question! 💰 Treatments in Korea cost 40-60% less. Try our AI Price Calculator for a personalized estimate!",
	},
}

var categoryLabels = map[string]string{
	"beauty":  "Beauty & Skin",
	"plastic": "Plastic Surgery",
	"dental":  "Dental",
	"checkup": "Health Checkup",
	"diet":    "Diet & Body",
	"other":   "Other",
}

func rec(id, title string, price int64, rating float64, slug string) Recommendation {
	return Recommendation{ID: id, Title: title, Price: decimal.NewFromInt(price), Rating: rating, Slug: slug}
}

var recommendations = map[string][]Recommendation{
	"beauty": {
		rec("b1", "Juvederm Filler + Gangnam Tour", 890_000, 4.9, "juvederm-filler-gangnam-tour"),
		rec("b2", "Premium Botox + Sinsa Shopping", 690_000, 4.8, "premium-botox-sinsa"),
	},
	"plastic": {
		rec("p1", "Rhinoplasty + Recovery Package", 3_900_000, 4.9, "rhinoplasty-recovery"),
		rec("p2", "Double Eyelid + Seoul Tour", 2_200_000, 4.7, "double-eyelid-seoul"),
	},
	"dental": {
		rec("d1", "Dental Implant All-in-One", 1_890_000, 4.8, "dental-implant-all-in-one"),
		rec("d2", "Teeth Whitening + Jeju Trip", 590_000, 4.6, "teeth-whitening-jeju"),
	},
	"checkup": {
		rec("c1", "Premium Full-Body Checkup + DMZ", 2_890_000, 4.9, "premium-checkup-dmz"),
		rec("c2", "Anti-Aging Screening + Spa", 1_590_000, 4.7, "anti-aging-spa"),
	},
	"diet": {
		rec("dt1", "Body Contouring + Wellness Stay", 2_490_000, 4.8, "body-contouring-wellness"),
		rec("dt2", "Liposuction Package + Recovery", 3_200_000, 4.7, "liposuction-recovery"),
	},
	"other": {
		rec("o1", "Stem Cell Therapy + VIP Tour", 8_900_000, 4.9, "stem-cell-vip"),
		rec("o2", "Wellness Detox + Temple Stay", 1_290_000, 4.6, "wellness-detox-temple"),
	},
}
