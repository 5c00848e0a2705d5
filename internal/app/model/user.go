package model

// UserIdentity is the local stand-in for a signed-in shopper.
type UserIdentity struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// ProfileUpdate carries a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

// Apply merges the supplied fields into u.
func (p ProfileUpdate) Apply(u UserIdentity) UserIdentity {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	return u
}

// DemoUser is the identity used when signing in without details.
var DemoUser = UserIdentity{
	ID:     "u1",
	Name:   "Alex Johnson",
	Email:  "alex@example.com",
	Avatar: "https://i.pravatar.cc/150?u=alex",
}
