package model

import "time"

// Merchant is the business entity that issues bills.  Only the
// columns the billing flows read are modelled; the merchant
// onboarding surface lives in a separate service.
//
// Fields:
//  ID           – primary key identifier.
//  BusinessName – display name embedded in notifications.
//  GSTNumber    – tax registration number.
//  Email        – unique contact email.
//  PhoneNumber  – unique contact phone.
//  IsActive     – whether the merchant is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Merchant struct {
	ID           uint64    // merchants.id
	BusinessName string    // merchants.business_name
	GSTNumber    string    // merchants.gst_number
	Email        string    // merchants.email
	PhoneNumber  string    // merchants.phone_number
	IsActive     bool      // merchants.is_active
	CreatedAt    time.Time // merchants.created_at
	UpdatedAt    time.Time // merchants.updated_at
}

// StoreLocation is a physical store belonging to a merchant.  Bills
// optionally reference the store they were issued from.
//
// Fields:
//  ID         – primary key identifier.
//  MerchantID – owning merchant.
//  StoreName  – display name used in bill listings.
//  City       – store city.
//  IsActive   – whether the store is active.
//  CreatedAt  – timestamp of creation.
type StoreLocation struct {
	ID         uint64    // store_locations.id
	MerchantID uint64    // store_locations.merchant_id
	StoreName  string    // store_locations.store_name
	City       string    // store_locations.city
	IsActive   bool      // store_locations.is_active
	CreatedAt  time.Time // store_locations.created_at
}
