package models

import "time"

// Mode is the operating policy of a room channel.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
	ModeOff    Mode = "off"
)

// Valid reports whether m is one of the three known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeAuto, ModeManual, ModeOff:
		return true
	}
	return false
}

// Channel is one of the controllable room metrics.
type Channel string

const (
	ChannelTemperature Channel = "temperature"
	ChannelHumidity    Channel = "humidity"
	ChannelLight       Channel = "light"
)

// Channels lists every channel in display order.
var Channels = []Channel{ChannelTemperature, ChannelHumidity, ChannelLight}

const (
	AutoControlOn  = "ON"
	AutoControlOff = "OFF"
)

// ChannelConfig is the desired mode and setpoint of one channel.
type ChannelConfig struct {
	Mode   Mode    `json:"mode"`
	Target float64 `json:"target"`
}

// RoomConfiguration is the desired operating state of a room. All three
// channels are always present.
type RoomConfiguration struct {
	RoomID      string        `json:"roomId"`
	OfficeID    string        `json:"officeId"`
	Temperature ChannelConfig `json:"temperature"`
	Humidity    ChannelConfig `json:"humidity"`
	Light       ChannelConfig `json:"light"`
	AutoOnTime  string        `json:"autoOnTime"`
	AutoOffTime string        `json:"autoOffTime"`
	AutoControl string        `json:"autoControl"`
	LastUpdate  string        `json:"lastUpdate,omitempty"`
}

// Channel returns the configuration of ch. Unknown channels return the zero value.
func (c RoomConfiguration) Channel(ch Channel) ChannelConfig {
	switch ch {
	case ChannelTemperature:
		return c.Temperature
	case ChannelHumidity:
		return c.Humidity
	case ChannelLight:
		return c.Light
	}
	return ChannelConfig{}
}

// WithChannel returns a copy of c with ch replaced by cc.
func (c RoomConfiguration) WithChannel(ch Channel, cc ChannelConfig) RoomConfiguration {
	switch ch {
	case ChannelTemperature:
		c.Temperature = cc
	case ChannelHumidity:
		c.Humidity = cc
	case ChannelLight:
		c.Light = cc
	}
	return c
}

// Fallback setpoints used when the persisted configuration cannot be loaded.
const (
	DefaultTargetTemperature = 26
	DefaultTargetHumidity    = 60
	DefaultTargetLight       = 300
	DefaultAutoOnTime        = "08:00"
	DefaultAutoOffTime       = "17:00"
)

// DefaultRoomConfiguration returns the documented fallback configuration.
func DefaultRoomConfiguration(officeID, roomID string) RoomConfiguration {
	return RoomConfiguration{
		RoomID:      roomID,
		OfficeID:    officeID,
		Temperature: ChannelConfig{Mode: ModeAuto, Target: DefaultTargetTemperature},
		Humidity:    ChannelConfig{Mode: ModeAuto, Target: DefaultTargetHumidity},
		Light:       ChannelConfig{Mode: ModeAuto, Target: DefaultTargetLight},
		AutoOnTime:  DefaultAutoOnTime,
		AutoOffTime: DefaultAutoOffTime,
		AutoControl: AutoControlOn,
	}
}

// RoomConfigUpdate is the full-replace payload sent to the backend. Targets
// are pointers so that non-auto targets can be withheld when configured to.
type RoomConfigUpdate struct {
	TemperatureMode   Mode     `json:"temperatureMode"`
	HumidityMode      Mode     `json:"humidityMode"`
	LightMode         Mode     `json:"lightMode"`
	TargetTemperature *float64 `json:"targetTemperature,omitempty"`
	TargetHumidity    *float64 `json:"targetHumidity,omitempty"`
	TargetLight       *float64 `json:"targetLight,omitempty"`
	AutoOnTime        string   `json:"autoOnTime"`
	AutoOffTime       string   `json:"autoOffTime"`
	AutoControl       string   `json:"autoControl,omitempty"`
}

// RoomStatus is display-only device state returned with a room configuration.
type RoomStatus struct {
	ThingName          string   `json:"thingName,omitempty"`
	ConnectionStatus   string   `json:"connectionStatus,omitempty"`
	DeviceStatus       string   `json:"deviceStatus,omitempty"`
	CurrentTemperature *float64 `json:"currentTemperature,omitempty"`
	CurrentHumidity    *float64 `json:"currentHumidity,omitempty"`
	CurrentLight       *float64 `json:"currentLight,omitempty"`
}

// Room is a room list item.
type Room struct {
	RoomID             string   `json:"roomId" mapstructure:"roomId"`
	OfficeID           string   `json:"officeId" mapstructure:"officeId"`
	ThingName          string   `json:"thingName,omitempty" mapstructure:"thingName"`
	ConnectionStatus   string   `json:"connectionStatus,omitempty" mapstructure:"connectionStatus"`
	CurrentTemperature *float64 `json:"currentTemperature,omitempty" mapstructure:"currentTemperature"`
	CurrentHumidity    *float64 `json:"currentHumidity,omitempty" mapstructure:"currentHumidity"`
	CurrentLight       *float64 `json:"currentLight,omitempty" mapstructure:"currentLight"`
}

// SensorReading is one point of a room's sensor history.
type SensorReading struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Light       float64   `json:"light"`
}

// ActivityLogEntry is a read-only audit row.
type ActivityLogEntry struct {
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"timestamp"`
	Room      string `json:"room"`
	Action    string `json:"action"`
	Device    string `json:"device"`
	OldValue  string `json:"oldValue"`
	NewValue  string `json:"newValue"`
	User      string `json:"user"`
	Mode      string `json:"mode"`
}

// UserOffice is the office assignment of a user.
type UserOffice struct {
	UserID   string `json:"userId"`
	OfficeID string `json:"officeId"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// BackendUser is the user block of a login response.
type BackendUser struct {
	UserID        string   `json:"userId"`
	Email         string   `json:"email"`
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	OfficeID      string   `json:"officeId"`
	CognitoGroups []string `json:"cognitoGroups"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResponse represents the backend login response
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	IDToken      string      `json:"id_token"`
	RefreshToken string      `json:"refresh_token"`
	User         BackendUser `json:"user"`
}

// SessionResponse is returned to the dashboard after a successful login.
type SessionResponse struct {
	SessionToken string   `json:"session_token"`
	Role         string   `json:"role"`
	Groups       []string `json:"groups"`
	OfficeID     string   `json:"officeId,omitempty"`
	UserID       string   `json:"userId"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Redirect     string   `json:"redirect"`
}

type ProfileUpdates struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=1,max=128"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type ProfileUpdateRequest struct {
	UserID  string         `json:"userId"`
	Updates ProfileUpdates `json:"updates"`
}

type SignupRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=128"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifySignupRequest confirms a new account with the emailed code.
type VerifySignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,max=16"`
	CompanyName string `json:"companyName,omitempty" validate:"max=128"`
}

type ResendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Code            string `json:"code" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,password_strength"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// CreateOfficeRequest creates an office together with its manager account.
type CreateOfficeRequest struct {
	OfficeName   string `json:"officeName" validate:"required,min=2,max=128"`
	Address      string `json:"address,omitempty" validate:"max=256"`
	ManagerName  string `json:"managerName" validate:"required,min=2,max=128"`
	ManagerEmail string `json:"managerEmail" validate:"required,email"`
}

type Office struct {
	OfficeID     string `json:"officeId"`
	Name         string `json:"name"`
	Address      string `json:"address,omitempty"`
	ManagerName  string `json:"managerName,omitempty"`
	ManagerEmail string `json:"managerEmail,omitempty"`
}

// OfficeManager is the manager assigned to an office, if any.
type OfficeManager struct {
	UserID     string `json:"userId"`
	Name       string `json:"managerName"`
	Email      string `json:"managerEmail"`
	Role       string `json:"managerRole,omitempty"`
	Status     string `json:"managerStatus,omitempty"`
	AssignedAt string `json:"assignedAt,omitempty"`
}

type OfficeDetail struct {
	OfficeID  string         `json:"officeId"`
	Name      string         `json:"name"`
	Address   string         `json:"address,omitempty"`
	CreatedAt string         `json:"createdAt,omitempty"`
	Manager   *OfficeManager `json:"manager"`
}

// UpdateOfficeRequest edits an office and its manager. Empty fields are left
// unchanged.
type UpdateOfficeRequest struct {
	Name          string `json:"name,omitempty" validate:"omitempty,min=2,max=128"`
	Address       string `json:"address,omitempty" validate:"max=256"`
	ManagerName   string `json:"managerName,omitempty" validate:"omitempty,min=2,max=128"`
	ManagerStatus string `json:"managerStatus,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type CreateRoomRequest struct {
	RoomID string `json:"roomId" validate:"required,min=1,max=64"`
}

// RoomProvisioning is the device identity issued for a new room. The private
// key is returned once and never stored here.
type RoomProvisioning struct {
	Message        string `json:"message,omitempty"`
	OfficeID       string `json:"officeId"`
	RoomID         string `json:"roomId"`
	ThingName      string `json:"thingName"`
	CertificatePem string `json:"certificatePem"`
	PrivateKey     string `json:"privateKey"`
	RootCA         string `json:"rootCA"`
}

// DraftEdit stages one field of a room configuration draft.
type DraftEdit struct {
	Channel string `json:"channel"`
	Field   string `json:"field" validate:"required"`
	Value   any    `json:"value"`
}

// ConfirmRequest carries the explicit confirmation of a dangerous action.
type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}
