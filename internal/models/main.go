// Package models defines the core data structures shared by the wardrobe
// client and the reference backend.
package models

// Credentials is the username/password pair of an authenticated session.
// It only ever lives in process memory.
type Credentials struct {
	// Username is the login name chosen at registration.
	Username string `json:"username"`
	// Password is the plaintext password, resent on every authenticated call.
	Password string `json:"password"`
}

// User represents an account stored by the backend.
type User struct {
	// ID is the unique identifier for the user.
	ID int64
	// Username is the login name chosen by the user.
	Username string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
}

// ClothingFields holds the user-editable attributes of a clothing item.
// It is also the request body of create and update calls.
type ClothingFields struct {
	// Name is a free-form label ("Blue Shirt").
	Name string `json:"name"`
	// Formality is the occasion level ("casual", "formal", "any").
	Formality string `json:"formality"`
	// Color is the dominant color ("navy-blue").
	Color string `json:"color"`
	// Type is the garment slot: top, bottom, footwear, outerwear or headwear.
	Type string `json:"type"`
	// Subtype is the concrete garment ("t-shirt", "jeans", "boots").
	Subtype string `json:"subtype"`
}

// ClothingItem is a clothing record owned by the server. ID is assigned by
// the server and is the item's identity.
type ClothingItem struct {
	ID int64 `json:"id"`
	ClothingFields
}

// Outfit is a generated recommendation. Entries may be nil and must be
// skipped when rendering.
type Outfit []*ClothingItem

// Items returns the non-nil entries of the outfit in order.
func (o Outfit) Items() []ClothingItem {
	items := make([]ClothingItem, 0, len(o))
	for _, it := range o {
		if it == nil {
			continue
		}
		items = append(items, *it)
	}
	return items
}

// Garment types recognised by the recommendation engine.
const (
	TypeTop       = "top"
	TypeBottom    = "bottom"
	TypeFootwear  = "footwear"
	TypeOuterwear = "outerwear"
	TypeHeadwear  = "headwear"
)

// FormalityAny marks an item that fits every occasion.
const FormalityAny = "any"
