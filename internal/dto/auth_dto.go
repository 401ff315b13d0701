package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/ridehail-auth/internal/models"
)

type CustomerSignupRequest struct {
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	Mobile    string `json:"mobile" form:"mobile"`
}

// DriverSignupRequest arrives as multipart form data next to the
// nationalId and driveLicense image files.
type DriverSignupRequest struct {
	FirstName       string `json:"first_name" form:"first_name"`
	LastName        string `json:"last_name" form:"last_name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	Mobile          string `json:"mobile" form:"mobile"`
	VehicleModel    string `json:"vehicle_model" form:"vehicle_model"`
	VehicleYear     int    `json:"vehicle_year" form:"vehicle_year"`
	VehicleColor    string `json:"vehicle_color" form:"vehicle_color"`
	VehiclePlateNum string `json:"vehicle_plate_num" form:"vehicle_plate_num"`
}

// Profile returns the fields a driver shares with a customer signup.
func (r *DriverSignupRequest) Profile() CustomerSignupRequest {
	return CustomerSignupRequest{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
		Mobile:    r.Mobile,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        AccountSummary `json:"user"`
}

// AccountSummary is the public view of an account. It never carries the
// password hash.
type AccountSummary struct {
	ID              uint            `json:"id"`
	Role            models.Role     `json:"role"`
	Name            string          `json:"name,omitempty"`
	FirstName       string          `json:"first_name,omitempty"`
	LastName        string          `json:"last_name,omitempty"`
	Email           string          `json:"email"`
	Mobile          string          `json:"mobile,omitempty"`
	EmailConfirmed  bool            `json:"email_confirmed"`
	MobileConfirmed bool            `json:"mobile_confirmed"`
	Vehicle         *VehicleSummary `json:"vehicle,omitempty"`
}

type VehicleSummary struct {
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Color    string `json:"color"`
	PlateNum string `json:"plate_num"`
}

func NewAccountSummary(account models.Account) AccountSummary {
	s := AccountSummary{
		ID:              account.AccountID(),
		Role:            account.AccountRole(),
		Email:           account.AccountEmail(),
		Mobile:          account.AccountMobile(),
		EmailConfirmed:  account.EmailVerified(),
		MobileConfirmed: account.MobileVerified(),
	}
	switch a := account.(type) {
	case *models.Customer:
		s.FirstName, s.LastName = a.FirstName, a.LastName
	case *models.Driver:
		s.FirstName, s.LastName = a.FirstName, a.LastName
		if a.Vehicle != nil {
			s.Vehicle = &VehicleSummary{
				Model:    a.Vehicle.Model,
				Year:     a.Vehicle.Year,
				Color:    a.Vehicle.Color,
				PlateNum: a.Vehicle.PlateNum,
			}
		}
	case *models.Admin:
		s.Name = a.Name
	}
	return s
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Store     string `json:"store"`
}
