package domain

import "time"

// TypeCPU is the only part type that carries a socket.
const TypeCPU = "CPU (Central Processing Unit)"

// PartTypes is the allow-list of listing categories, in display order.
var PartTypes = []string{
	TypeCPU,
	"Motherboard",
	"RAM (Random Access Memory)",
	"GPU (Graphics Processing Unit) / Graphics Card",
	"SSD (Solid State Drive) / HDD (Hard Disk Drive)",
	"PSU (Power Supply Unit)",
	"Case",
	"CPU Cooler",
	"Case Fans",
	"Monitor",
	"Keyboard",
	"Mouse",
	"Speakers / Headphones",
	"Network Adapter (Ethernet/Wi-Fi)",
	"Other",
}

// IsValidPartType reports whether t is one of PartTypes.
func IsValidPartType(t string) bool {
	for _, pt := range PartTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// MaxPreviews is the upper bound on preview images per listing.
const MaxPreviews = 5

// ExtraDetail is a free-form name/value attribute attached to a listing.
type ExtraDetail struct {
	Name  string `json:"name" bson:"name"`
	Value string `json:"value" bson:"value"`
}

// Part is a single marketplace listing.
type Part struct {
	ID           string        `json:"id" bson:"id"`
	UserID       string        `json:"userId" bson:"userId"`
	Name         string        `json:"name" bson:"name"`
	Type         string        `json:"type" bson:"type"`
	Socket       *string       `json:"socket" bson:"socket"`
	Price        float64       `json:"price" bson:"price"`
	Hashtags     []string      `json:"hashtags" bson:"hashtags"`
	Thumbnail    *string       `json:"thumbnail" bson:"thumbnail"`
	Previews     []string      `json:"previews" bson:"previews"`
	IsPublic     bool          `json:"isPublic" bson:"isPublic"`
	ExtraDetails []ExtraDetail `json:"extraDetails" bson:"extraDetails"`
	CreatedAt    time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt    *time.Time    `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// IsCPU reports whether the part belongs to the CPU category.
func (p Part) IsCPU() bool { return p.Type == TypeCPU }

// VisibleTo reports whether viewer may see the part. A nil viewer is anonymous.
func (p Part) VisibleTo(viewer *User) bool {
	return p.IsPublic || p.OwnedBy(viewer)
}

// OwnedBy reports whether u is the part's owner.
func (p Part) OwnedBy(u *User) bool {
	return u != nil && u.ID == p.UserID
}

// HasHashtag reports whether the exact tag (including its leading '#') is attached.
func (p Part) HasHashtag(tag string) bool {
	for _, h := range p.Hashtags {
		if h == tag {
			return true
		}
	}
	return false
}
