package models

// Icon is the profile picture a user picked from the icon catalog
type Icon struct {
	// Name is the catalog name of the icon
	Name string `json:"name"`

	// Color is the foreground color
	Color string `json:"color"`

	// BackgroundColor is the background color
	BackgroundColor string `json:"backgroundColor"`
}

// User represents a global identity, independent of any room
type User struct {
	// ID is the unique identifier for the user
	ID string `json:"id"`

	// Token is the opaque credential issued at account creation.
	// It is never included in broadcasts to other users.
	Token string `json:"token,omitempty"`

	// Name is the display name, empty until the profile is set up
	Name string `json:"name,omitempty"`

	// Icon is the profile icon, nil until the profile is set up
	Icon *Icon `json:"icon,omitempty"`
}

// Configured reports whether the user has completed profile setup.
// Only configured users generate join/leave chat messages.
func (u *User) Configured() bool {
	return u != nil && u.Name != "" && u.Icon != nil
}

// StripUser returns a copy of the user with the token removed,
// safe to include in broadcast payloads.
func StripUser(u User) User {
	u.Token = ""
	return u
}
