package models

import "time"

// Account is implemented by *Customer, *Driver and *Admin.
type Account interface {
	AccountID() uint
	AccountRole() Role
	AccountEmail() string
	AccountMobile() string
	PasswordHash() string
	EmailVerified() bool
	MobileVerified() bool
}

type Customer struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FirstName       string    `gorm:"size:32;not null" json:"first_name"`
	LastName        string    `gorm:"size:32;not null" json:"last_name"`
	Email           string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Mobile          string    `gorm:"size:20;not null;uniqueIndex" json:"mobile"`
	Password        string    `gorm:"not null" json:"-"`
	EmailConfirmed  bool      `gorm:"not null;default:false" json:"email_confirmed"`
	MobileConfirmed bool      `gorm:"not null;default:false" json:"mobile_confirmed"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (c *Customer) AccountID() uint       { return c.ID }
func (c *Customer) AccountRole() Role     { return RoleCustomer }
func (c *Customer) AccountEmail() string  { return c.Email }
func (c *Customer) AccountMobile() string { return c.Mobile }
func (c *Customer) PasswordHash() string  { return c.Password }
func (c *Customer) EmailVerified() bool   { return c.EmailConfirmed }
func (c *Customer) MobileVerified() bool  { return c.MobileConfirmed }

type Driver struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FirstName       string    `gorm:"size:32;not null" json:"first_name"`
	LastName        string    `gorm:"size:32;not null" json:"last_name"`
	Email           string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Mobile          string    `gorm:"size:20;not null;uniqueIndex" json:"mobile"`
	Password        string    `gorm:"not null" json:"-"`
	EmailConfirmed  bool      `gorm:"not null;default:false" json:"email_confirmed"`
	MobileConfirmed bool      `gorm:"not null;default:false" json:"mobile_confirmed"`
	NationalIDURL   string    `gorm:"column:national_id_url;not null" json:"national_id_url"`
	DriveLicenseURL string    `gorm:"not null" json:"drive_license_url"`
	Vehicle         *Vehicle  `gorm:"foreignKey:DriverID;constraint:OnDelete:CASCADE" json:"vehicle,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (d *Driver) AccountID() uint       { return d.ID }
func (d *Driver) AccountRole() Role     { return RoleDriver }
func (d *Driver) AccountEmail() string  { return d.Email }
func (d *Driver) AccountMobile() string { return d.Mobile }
func (d *Driver) PasswordHash() string  { return d.Password }
func (d *Driver) EmailVerified() bool   { return d.EmailConfirmed }
func (d *Driver) MobileVerified() bool  { return d.MobileConfirmed }

type Vehicle struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DriverID  uint      `gorm:"not null;uniqueIndex" json:"driver_id"`
	Model     string    `gorm:"size:64;not null" json:"model"`
	Year      int       `gorm:"not null" json:"year"`
	Color     string    `gorm:"size:32;not null" json:"color"`
	PlateNum  string    `gorm:"size:32;not null;uniqueIndex" json:"plate_num"`
	CreatedAt time.Time `json:"created_at"`
}

// Admin accounts are created by other admins and skip the confirmation
// workflow, so both channels always read as verified.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:32;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Admin) AccountID() uint       { return a.ID }
func (a *Admin) AccountRole() Role     { return RoleAdmin }
func (a *Admin) AccountEmail() string  { return a.Email }
func (a *Admin) AccountMobile() string { return "" }
func (a *Admin) PasswordHash() string  { return a.Password }
func (a *Admin) EmailVerified() bool   { return true }
func (a *Admin) MobileVerified() bool  { return true }

// Identity is the shared uniqueness index for customer and driver contact
// details. A row is written in the same transaction as the account it points
// at, so two concurrent signups cannot both claim an email or mobile.
type Identity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Role      Role      `gorm:"size:16;not null;index:idx_identities_owner" json:"role"`
	AccountID uint      `gorm:"not null;index:idx_identities_owner" json:"account_id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Mobile    string    `gorm:"size:20;not null;uniqueIndex" json:"mobile"`
	CreatedAt time.Time `json:"created_at"`
}
