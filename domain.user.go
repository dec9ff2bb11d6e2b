package main

import "time"

// User represents a library patron.
type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	ProfileImageURL *string   `json:"profileImageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// UserInput is the payload of a user creation.
type UserInput struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           string  `json:"phone"`
	Address         string  `json:"address"`
	ProfileImageURL *string `json:"profileImageUrl" validate:"omitempty,url"`
}

// UserUpdate is a partial profile update. A nil field keeps the stored value.
type UserUpdate struct {
	Name            *string `json:"name" validate:"omitempty,min=1"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Phone           *string `json:"phone"`
	Address         *string `json:"address"`
	ProfileImageURL *string `json:"profileImageUrl" validate:"omitempty,url"`
}

func (u UserUpdate) applyTo(user *User) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.Phone != nil {
		user.Phone = *u.Phone
	}
	if u.Address != nil {
		user.Address = *u.Address
	}
	if u.ProfileImageURL != nil {
		user.ProfileImageURL = u.ProfileImageURL
	}
}
