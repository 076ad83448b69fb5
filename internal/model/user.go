package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Gender of a profile, also used for the accepted-genders preference
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Valid reports whether g is one of the known genders
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Role separates regular members from moderators
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is an account together with its dating profile
type User struct {
	ID        uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string                      `json:"name" gorm:"size:100;not null"`
	Email     string                      `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password  string                      `json:"-" gorm:"size:255"`
	Role      Role                        `json:"role" gorm:"type:varchar(10);default:'USER'"`
	Birthdate *time.Time                  `json:"birthdate"`
	Gender    Gender                      `json:"gender" gorm:"type:varchar(10)"`
	Bio       string                      `json:"bio" gorm:"type:text"`
	City      string                      `json:"city" gorm:"size:100"`
	Latitude  *float64                    `json:"latitude"`
	Longitude *float64                    `json:"longitude"`
	Interests datatypes.JSONSlice[string] `json:"interests"`
	IsBanned  bool                        `json:"is_banned" gorm:"default:false;index"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`

	// Relations
	Photos     []Photo     `json:"photos,omitempty" gorm:"foreignKey:UserID"`
	Preference *Preference `json:"preference,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasLocation reports whether both coordinates are known
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// PrimaryPhoto returns the primary photo, falling back to the first one
func (u *User) PrimaryPhoto() *Photo {
	for i := range u.Photos {
		if u.Photos[i].IsPrimary {
			return &u.Photos[i]
		}
	}
	if len(u.Photos) > 0 {
		return &u.Photos[0]
	}
	return nil
}

// IsAdmin reports whether the user may moderate
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserResponse is the safe version of User for API responses
type UserResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	Age             int       `json:"age,omitempty"`
	Gender          Gender    `json:"gender"`
	Bio             string    `json:"bio"`
	City            string    `json:"city"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
	Interests       []string  `json:"interests"`
	Photos          []Photo   `json:"photos"`
	PrimaryPhotoURL string    `json:"primary_photo_url,omitempty"`
}

// ToResponse converts User to safe UserResponse. age is computed by the caller.
func (u *User) ToResponse(age int) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Age:       age,
		Gender:    u.Gender,
		Bio:       u.Bio,
		City:      u.City,
		Latitude:  u.Latitude,
		Longitude: u.Longitude,
		Interests: []string(u.Interests),
		Photos:    u.Photos,
	}
	if resp.Interests == nil {
		resp.Interests = []string{}
	}
	if resp.Photos == nil {
		resp.Photos = []Photo{}
	}
	if p := u.PrimaryPhoto(); p != nil {
		resp.PrimaryPhotoURL = p.URL
	}
	return resp
}

// Photo is a profile picture stored in object storage
type Photo struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;index;not null"`
	URL       string    `json:"url" gorm:"size:1000;not null"`
	Key       string    `json:"-" gorm:"size:500"`
	IsPrimary bool      `json:"is_primary" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// MaxPhotos is how many photos a profile may hold
const MaxPhotos = 6
