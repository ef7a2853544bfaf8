package validators

import "safewatch/internal/models"

type AdminUserUpdateRequest struct {
	Name    string `json:"name" validate:"omitempty,min=2,max=100"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Address string `json:"address" validate:"omitempty,max=500"`
}

func ValidateAdminUserUpdate(req *AdminUserUpdateRequest) ValidationErrors {
	return ValidateStruct(req)
}

func (r *AdminUserUpdateRequest) Model() *models.AdminUserUpdate {
	return &models.AdminUserUpdate{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
	}
}
