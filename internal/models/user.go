package models

import "time"

// UserProfile is the ephemeral identity of a connection that asked to be matched.
// It is created on find-stranger and never mutated afterwards.
type UserProfile struct {
	// ConnectionID is the transport-assigned id, stable for the life of the connection.
	ConnectionID string `json:"-"`
	// Username is the display name, defaulted when the client sends none.
	Username string `json:"username"`
	// Location is free text, defaulted to a random entry of the location list.
	Location string `json:"location"`
	// Interests are advisory tags shown to the partner; never used for matching.
	Interests []string `json:"interests"`
	// JoinedAt is when the profile entered the waiting queue.
	JoinedAt time.Time `json:"-"`
}

// PartnerSummary is what a matched user learns about the other side.
// It carries no connection id.
type PartnerSummary struct {
	Username  string   `json:"username"`
	Location  string   `json:"location"`
	Interests []string `json:"interests"`
}

// Summary returns the public view of the profile.
func (u *UserProfile) Summary() PartnerSummary {
	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}
	return PartnerSummary{
		Username:  u.Username,
		Location:  u.Location,
		Interests: interests,
	}
}
