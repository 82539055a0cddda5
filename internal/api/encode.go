package api

import (
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kmedi-tour/internal/catalog"
	"github.com/xenking/kmedi-tour/internal/domain/account"
	"github.com/xenking/kmedi-tour/internal/domain/assistant"
	"github.com/xenking/kmedi-tour/internal/domain/booking"
	"github.com/xenking/kmedi-tour/internal/domain/cart"
	"github.com/xenking/kmedi-tour/internal/domain/deal"
	"github.com/xenking/kmedi-tour/internal/domain/recent"
	"github.com/xenking/kmedi-tour/internal/domain/trip"
	"github.com/xenking/kmedi-tour/internal/domain/wishlist"
)

func str(e *jx.Encoder, k, v string) {
	e.FieldStart(k)
	e.Str(v)
}

// optString writes null for "".
func optString(e *jx.Encoder, k, v string) {
	e.FieldStart(k)
	if v == "" {
		e.Null()
		return
	}
	e.Str(v)
}

func num(e *jx.Encoder, k string, v int) {
	e.FieldStart(k)
	e.Int(v)
}

func flt(e *jx.Encoder, k string, v float64) {
	e.FieldStart(k)
	e.Float64(v)
}

func boolean(e *jx.Encoder, k string, v bool) {
	e.FieldStart(k)
	e.Bool(v)
}

// money writes a decimal as a JSON number.
func money(e *jx.Encoder, k string, v decimal.Decimal) {
	e.FieldStart(k)
	e.Num(jx.Num(v.String()))
}

func timestamp(e *jx.Encoder, k string, v time.Time) {
	e.FieldStart(k)
	e.Str(v.UTC().Format(time.RFC3339))
}

func strs[S ~string](e *jx.Encoder, k string, v []S) {
	e.FieldStart(k)
	e.ArrStart()
	for _, s := range v {
		e.Str(string(s))
	}
	e.ArrEnd()
}

func list[T any](e *jx.Encoder, k string, items []T, enc func(*jx.Encoder, T)) {
	e.FieldStart(k)
	e.ArrStart()
	for _, it := range items {
		enc(e, it)
	}
	e.ArrEnd()
}

// object writes a bare top-level object.
func object(fn func(e *jx.Encoder)) func(*jx.Encoder) {
	return func(e *jx.Encoder) {
		e.ObjStart()
		fn(e)
		e.ObjEnd()
	}
}

func encLocation(e *jx.Encoder, l catalog.Location) {
	e.FieldStart("location")
	e.ObjStart()
	str(e, "city", l.City)
	str(e, "district", l.District)
	e.ObjEnd()
}

func encCategory(e *jx.Encoder, c catalog.Category) {
	e.ObjStart()
	str(e, "id", c.ID)
	str(e, "name", c.Name)
	str(e, "emoji", c.Emoji)
	strs(e, "specialties", c.Specialties)
	e.ObjEnd()
}

func encPackage(e *jx.Encoder, p catalog.Package) {
	e.ObjStart()
	str(e, "id", p.ID)
	str(e, "slug", p.Slug)
	str(e, "title", p.Title)
	strs(e, "images", p.Images)
	e.FieldStart("pricing")
	e.ObjStart()
	money(e, "originalPrice", p.Pricing.OriginalPrice)
	money(e, "salePrice", p.Pricing.SalePrice)
	num(e, "discountPercent", p.Pricing.DiscountPercent)
	e.ObjEnd()
	money(e, "price", p.Price())
	flt(e, "rating", p.Rating)
	num(e, "reviewCount", p.ReviewCount)
	encLocation(e, p.Location)
	str(e, "category", p.Category)
	str(e, "subcategory", p.Subcategory)
	e.FieldStart("duration")
	e.ObjStart()
	num(e, "days", p.Duration.Days)
	num(e, "nights", p.Duration.Nights)
	e.ObjEnd()
	strs(e, "badges", p.Badges)
	e.ObjEnd()
}

func encHospital(e *jx.Encoder, h catalog.Hospital) {
	e.ObjStart()
	str(e, "id", h.ID)
	str(e, "name", h.Name)
	strs(e, "specialties", h.Specialties)
	strs(e, "certifications", h.Certifications)
	flt(e, "rating", h.Rating)
	e.ObjEnd()
}

func encAccommodation(e *jx.Encoder, a catalog.Accommodation) {
	e.ObjStart()
	str(e, "id", a.ID)
	str(e, "name", a.Name)
	str(e, "type", a.Type)
	money(e, "pricePerNight", a.PricePerNight)
	str(e, "distanceToHospital", a.DistanceToHospital)
	e.ObjEnd()
}

func encRestaurant(e *jx.Encoder, r catalog.Restaurant) {
	e.ObjStart()
	str(e, "id", r.ID)
	str(e, "name", r.Name)
	str(e, "cuisine", r.Cuisine)
	str(e, "priceRange", r.PriceRange)
	flt(e, "rating", r.Rating)
	e.ObjEnd()
}

func encAttraction(e *jx.Encoder, a catalog.Attraction) {
	e.ObjStart()
	str(e, "id", a.ID)
	str(e, "name", a.Name)
	str(e, "type", a.Kind)
	str(e, "duration", a.Duration)
	flt(e, "rating", a.Rating)
	e.ObjEnd()
}

func encCountdown(e *jx.Encoder, c deal.Countdown) {
	e.FieldStart("countdown")
	e.ObjStart()
	num(e, "hours", c.Hours)
	num(e, "minutes", c.Minutes)
	num(e, "seconds", c.Seconds)
	boolean(e, "expired", c.Expired)
	e.ObjEnd()
}

func encEvent(e *jx.Encoder, ev catalog.Event, now time.Time) {
	e.ObjStart()
	str(e, "id", ev.ID)
	str(e, "title", ev.Title)
	str(e, "type", ev.Type)
	str(e, "startDate", ev.StartDate.Format(time.DateOnly))
	str(e, "endDate", ev.EndDate.Format(time.DateOnly))
	e.FieldStart("discount")
	e.ObjStart()
	str(e, "type", ev.Discount.Type)
	money(e, "value", ev.Discount.Value)
	money(e, "maxDiscount", ev.Discount.MaxDiscount)
	e.ObjEnd()
	optString(e, "couponCode", ev.CouponCode)
	encCountdown(e, deal.Remaining(ev.EndDate.AddDate(0, 0, 1), now))
	e.ObjEnd()
}

func encContact(e *jx.Encoder, c trip.ContactInfo) {
	e.FieldStart("contactInfo")
	e.ObjStart()
	str(e, "name", c.Name)
	str(e, "email", c.Email)
	str(e, "phone", c.Phone)
	str(e, "country", c.Country)
	str(e, "preferredDate", c.PreferredDate)
	str(e, "message", c.Message)
	e.ObjEnd()
}

func encTrip(e *jx.Encoder, w *trip.Wizard) {
	st := w.State()
	e.ObjStart()
	optString(e, "tripType", string(st.TripType))
	strs(e, "steps", w.Steps())
	num(e, "currentStep", w.CurrentIndex())
	if step, ok := w.CurrentStep(); ok {
		str(e, "currentStepName", string(step))
	} else {
		optString(e, "currentStepName", "")
	}
	num(e, "totalSteps", w.TotalSteps())
	flt(e, "progress", w.Progress())
	boolean(e, "canProceed", w.CanProceed())
	boolean(e, "submitted", st.Submitted)
	optString(e, "selectedCategory", st.SelectedCategory)
	optString(e, "selectedHospital", st.SelectedHospital)
	optString(e, "selectedAccommodation", st.SelectedAccommodation)
	strs(e, "selectedRestaurants", st.SelectedRestaurants)
	strs(e, "selectedAttractions", st.SelectedAttractions)
	encContact(e, st.Contact)
	if st.Submitted {
		encSummary(e, w.Summary())
	}
	e.ObjEnd()
}

func encSummary(e *jx.Encoder, s trip.Summary) {
	e.FieldStart("summary")
	e.ObjStart()
	str(e, "tripType", string(s.TripType))
	optString(e, "category", s.Category)
	optString(e, "hospital", s.Hospital)
	optString(e, "accommodation", s.Accommodation)
	strs(e, "restaurants", s.Restaurants)
	strs(e, "attractions", s.Attractions)
	encContact(e, s.Contact)
	e.ObjEnd()
}

func encLineItem(e *jx.Encoder, l cart.LineItem) {
	e.ObjStart()
	str(e, "id", l.ID)
	str(e, "packageId", l.PackageID)
	str(e, "slug", l.Slug)
	str(e, "title", l.Title)
	str(e, "image", l.Image)
	money(e, "price", l.UnitPrice)
	money(e, "originalPrice", l.OriginalPrice)
	num(e, "quantity", l.Quantity)
	money(e, "subtotal", l.Subtotal())
	timestamp(e, "addedAt", l.AddedAt)
	e.ObjEnd()
}

func encCart(e *jx.Encoder, c *cart.Cart) {
	t := c.Totals()
	list(e, "items", c.Items, encLineItem)
	e.FieldStart("coupon")
	if c.Coupon == nil {
		e.Null()
	} else {
		e.ObjStart()
		str(e, "code", c.Coupon.Code)
		str(e, "type", string(c.Coupon.DiscountType))
		money(e, "value", c.Coupon.Value)
		str(e, "description", c.Coupon.Description)
		boolean(e, "active", t.CouponActive)
		e.ObjEnd()
	}
	money(e, "subtotal", t.Subtotal)
	money(e, "discount", t.Discount)
	money(e, "total", t.Total)
	num(e, "itemCount", t.ItemCount)
}

func encWishlistItem(e *jx.Encoder, it wishlist.Item) {
	e.ObjStart()
	str(e, "id", it.ID)
	str(e, "slug", it.Slug)
	str(e, "title", it.Title)
	str(e, "image", it.Image)
	money(e, "price", it.Price)
	money(e, "originalPrice", it.OriginalPrice)
	num(e, "discountPercent", it.DiscountPercent)
	flt(e, "rating", it.Rating)
	num(e, "reviewCount", it.ReviewCount)
	encLocation(e, it.Location)
	strs(e, "badges", it.Badges)
	timestamp(e, "addedAt", it.AddedAt)
	e.ObjEnd()
}

func encRecentItem(e *jx.Encoder, it recent.Item) {
	e.ObjStart()
	str(e, "id", it.ID)
	str(e, "slug", it.Slug)
	str(e, "title", it.Title)
	str(e, "image", it.Image)
	money(e, "price", it.Price)
	money(e, "originalPrice", it.OriginalPrice)
	flt(e, "rating", it.Rating)
	num(e, "reviewCount", it.ReviewCount)
	encLocation(e, it.Location)
	timestamp(e, "viewedAt", it.ViewedAt)
	e.ObjEnd()
}

func encRecent(e *jx.Encoder, l *recent.List, now time.Time) {
	g := l.Grouped(now)
	list(e, "items", l.Items, encRecentItem)
	e.FieldStart("groups")
	e.ObjStart()
	list(e, "today", g.Today, encRecentItem)
	list(e, "yesterday", g.Yesterday, encRecentItem)
	list(e, "thisWeek", g.ThisWeek, encRecentItem)
	list(e, "older", g.Older, encRecentItem)
	e.ObjEnd()
}

func encAccount(e *jx.Encoder, s *account.Session) {
	boolean(e, "authenticated", s.Authenticated())
	e.FieldStart("user")
	if s.User == nil {
		e.Null()
		return
	}
	u := s.User
	e.ObjStart()
	str(e, "id", u.ID)
	str(e, "name", u.Name)
	str(e, "email", u.Email)
	str(e, "avatar", u.Avatar)
	str(e, "country", u.Country)
	str(e, "countryCode", u.CountryCode)
	str(e, "memberSince", u.MemberSince)
	str(e, "tier", u.Tier)
	num(e, "points", u.Points)
	num(e, "bookings", u.Bookings)
	num(e, "reviews", u.Reviews)
	optString(e, "provider", string(u.Provider))
	e.ObjEnd()
}

func encRecommendation(e *jx.Encoder, r assistant.Recommendation) {
	e.ObjStart()
	str(e, "id", r.ID)
	str(e, "title", r.Title)
	money(e, "price", r.Price)
	flt(e, "rating", r.Rating)
	str(e, "slug", r.Slug)
	e.ObjEnd()
}

func encMessage(e *jx.Encoder, m assistant.Message) {
	e.ObjStart()
	str(e, "id", m.ID)
	str(e, "role", string(m.Role))
	str(e, "content", m.Content)
	timestamp(e, "timestamp", m.Timestamp)
	if len(m.Recommendations) > 0 {
		list(e, "recommendations", m.Recommendations, encRecommendation)
	}
	e.ObjEnd()
}

func encConversation(e *jx.Encoder, s assistant.Snapshot) {
	list(e, "messages", s.Messages, encMessage)
	boolean(e, "typing", s.Typing)
	optString(e, "selectedCategory", s.SelectedCategory)
	list(e, "recommendations", s.Recommendations, encRecommendation)
}

func encEstimate(e *jx.Encoder, est assistant.Estimate) {
	e.ObjStart()
	money(e, "treatmentTotal", est.TreatmentTotal)
	money(e, "hotelTotal", est.HotelTotal)
	money(e, "total", est.Total)
	num(e, "nights", est.Nights)
	num(e, "companions", est.Companions)
	e.ObjEnd()
}

func encQuote(e *jx.Encoder, q booking.Quote) {
	e.FieldStart("quote")
	e.ObjStart()
	money(e, "basePrice", q.BasePrice)
	num(e, "travelers", q.Travelers)
	list(e, "options", q.Options, func(e *jx.Encoder, o booking.Option) {
		e.ObjStart()
		str(e, "id", o.ID)
		str(e, "name", o.Name)
		money(e, "price", o.Price)
		e.ObjEnd()
	})
	money(e, "optionsTotal", q.OptionsTotal)
	money(e, "subtotal", q.Subtotal)
	e.ObjEnd()
}

func encConfirmation(e *jx.Encoder, c *booking.Confirmation) {
	e.ObjStart()
	str(e, "bookingNumber", c.BookingNumber)
	e.FieldStart("package")
	encPackage(e, c.Package)
	str(e, "date", c.Date)
	num(e, "travelers", c.Travelers)
	str(e, "paymentMethod", string(c.PaymentMethod))
	encQuote(e, c.Quote)
	e.ObjEnd()
}
