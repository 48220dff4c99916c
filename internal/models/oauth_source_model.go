package models

import "time"

// MetaPage is a Facebook page connected through Meta login. The page token is
// also used for the Instagram business account linked to the page.
type MetaPage struct {
	ID                  string    `db:"id" json:"id"`
	OrganizationID      string    `db:"organization_id" json:"organization_id"`
	PageID              string    `db:"page_id" json:"page_id"`
	PageName            string    `db:"page_name" json:"page_name"`
	PageAccessToken     string    `db:"page_access_token" json:"-"`
	InstagramBusinessID string    `db:"instagram_business_id" json:"instagram_business_id,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

type GoogleConnection struct {
	ID             string    `db:"id" json:"id"`
	OrganizationID string    `db:"organization_id" json:"organization_id"`
	Email          string    `db:"email" json:"email"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	GAPropertyID   string    `db:"ga_property_id" json:"ga_property_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type GMBLocation struct {
	ID                 string    `db:"id" json:"id"`
	GoogleConnectionID string    `db:"google_connection_id" json:"google_connection_id"`
	AccountID          string    `db:"account_id" json:"account_id"`
	LocationID         string    `db:"location_id" json:"location_id"`
	Title              string    `db:"title" json:"title"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
