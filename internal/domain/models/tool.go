// internal/domain/models/tool.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tool is a cataloged AI product or service.
//
// Rating and ReviewCount are denormalized from the reviews collection and
// must only be written through the ratings recompute path, never directly
// by handlers.
type Tool struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"` // folded for case-insensitive uniqueness

	Description string `bson:"description" json:"description"`
	URL         string `bson:"url" json:"url"`
	Website     string `bson:"website,omitempty" json:"website,omitempty"`
	Docs        string `bson:"documentation,omitempty" json:"documentation,omitempty"`

	Category    string   `bson:"category" json:"category"`
	Subcategory string   `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Tags        []string `bson:"tags" json:"tags"`

	Logo  string `bson:"logo,omitempty" json:"logo,omitempty"`
	Color string `bson:"color,omitempty" json:"color,omitempty"`

	Featured bool   `bson:"featured" json:"featured"`
	Pricing  string `bson:"pricing" json:"pricing"` // Free, Freemium, Paid, Enterprise
	Status   string `bson:"status" json:"status"`   // active, pending, inactive, beta, deprecated

	// Derived from reviews; see ratings recompute.
	Rating      float64 `bson:"rating" json:"rating"`
	ReviewCount int64   `bson:"review_count" json:"reviewCount"`

	Pros     []string `bson:"pros" json:"pros"`
	Cons     []string `bson:"cons" json:"cons"`
	Features []string `bson:"features" json:"features"`

	Views  int64 `bson:"views" json:"views"`
	Clicks int64 `bson:"clicks" json:"clicks"`

	APIAvailable bool   `bson:"api_available" json:"apiAvailable"`
	APIURL       string `bson:"api_url,omitempty" json:"apiUrl,omitempty"`

	CreatedBy *primitive.ObjectID `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
}

// Tool pricing tiers
const (
	PricingFree       = "Free"
	PricingFreemium   = "Freemium"
	PricingPaid       = "Paid"
	PricingEnterprise = "Enterprise"
)

// AllPricings returns all valid pricing tiers.
func AllPricings() []string {
	return []string{
		PricingFree,
		PricingFreemium,
		PricingPaid,
		PricingEnterprise,
	}
}

// IsValidPricing checks if a pricing tier is valid.
func IsValidPricing(p string) bool {
	for _, v := range AllPricings() {
		if v == p {
			return true
		}
	}
	return false
}

// Tool lifecycle statuses
const (
	StatusActive     = "active"
	StatusPending    = "pending"
	StatusInactive   = "inactive"
	StatusBeta       = "beta"
	StatusDeprecated = "deprecated"
)

// AllToolStatuses returns all valid tool statuses.
func AllToolStatuses() []string {
	return []string{
		StatusActive,
		StatusPending,
		StatusInactive,
		StatusBeta,
		StatusDeprecated,
	}
}

// IsValidToolStatus checks if a tool status is valid.
func IsValidToolStatus(s string) bool {
	for _, v := range AllToolStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// ToolInput holds caller-supplied fields for building a tool record.
type ToolInput struct {
	Name         string
	Description  string
	URL          string
	Website      string
	Docs         string
	Category     string
	Subcategory  string
	Tags         []string
	Logo         string
	Color        string
	Featured     bool
	Pricing      string
	Pros         []string
	Cons         []string
	Features     []string
	APIAvailable bool
	APIURL       string
	CreatedBy    *primitive.ObjectID
}

// NewTool builds a tool record from caller-supplied fields, stamping in
// system-managed defaults: zeroed counters, pending status, and timestamps
// from the injected clock. Deterministic given its inputs.
func NewTool(in ToolInput, now time.Time) Tool {
	t := Tool{
		Name:         in.Name,
		Description:  in.Description,
		URL:          in.URL,
		Website:      in.Website,
		Docs:         in.Docs,
		Category:     in.Category,
		Subcategory:  in.Subcategory,
		Tags:         in.Tags,
		Logo:         in.Logo,
		Color:        in.Color,
		Featured:     in.Featured,
		Pricing:      in.Pricing,
		Status:       StatusPending,
		Rating:       0,
		ReviewCount:  0,
		Pros:         in.Pros,
		Cons:         in.Cons,
		Features:     in.Features,
		Views:        0,
		Clicks:       0,
		APIAvailable: in.APIAvailable,
		APIURL:       in.APIURL,
		CreatedBy:    in.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Pros == nil {
		t.Pros = []string{}
	}
	if t.Cons == nil {
		t.Cons = []string{}
	}
	if t.Features == nil {
		t.Features = []string{}
	}
	return t
}
