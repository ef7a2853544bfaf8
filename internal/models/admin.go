package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUserSummary is one row of the admin user listing.
type AdminUserSummary struct {
	ID                primitive.ObjectID `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone"`
	Status            UserStatus         `json:"status"`
	Avatar            string             `json:"avatar"`
	LastActiveAt      time.Time          `json:"last_active_at"`
	CreatedAt         time.Time          `json:"created_at"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts"`
}

type AdminUserDetail struct {
	AdminUserSummary
	Address        string        `json:"address"`
	LastLocation   *LastLocation `json:"last_location"`
	RecentActivity []Activity    `json:"recent_activity"`
}

type AdminUserUpdate struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func NewAdminUserSummary(u *User) AdminUserSummary {
	s := AdminUserSummary{
		ID:                u.ID,
		Name:              orDefault(u.Name, "N/A"),
		Email:             u.Email,
		Phone:             orDefault(u.Phone, "N/A"),
		Status:            u.Status,
		Avatar:            u.Avatar,
		LastActiveAt:      u.CreatedAt,
		CreatedAt:         u.CreatedAt,
		EmergencyContacts: u.EmergencyContacts,
	}
	if s.Status == "" {
		s.Status = UserStatusInactive
	}
	if u.LastActiveAt != nil {
		s.LastActiveAt = *u.LastActiveAt
	}
	if s.EmergencyContacts == nil {
		s.EmergencyContacts = []EmergencyContact{}
	}
	return s
}

func NewAdminUserDetail(u *User) AdminUserDetail {
	d := AdminUserDetail{
		AdminUserSummary: NewAdminUserSummary(u),
		Address:          u.Address,
		LastLocation:     u.LastLocation,
		RecentActivity:   u.RecentActivity,
	}
	if d.RecentActivity == nil {
		d.RecentActivity = []Activity{}
	}
	return d
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
