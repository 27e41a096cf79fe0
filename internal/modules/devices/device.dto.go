package devices

import "time"

// Device is a palm scanner registered with the backend. Online state is
// driven by heartbeats and the liveness sweeper.
type Device struct {
	ID            string     `json:"id"`
	SN            string     `json:"sn"`
	Name          string     `json:"name"`
	Location      string     `json:"location,omitempty"`
	Online        bool       `json:"online"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type RegisterDeviceRequest struct {
	SN       string `json:"sn" validate:"required,min=4,max=64"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Location string `json:"location" validate:"omitempty,max=200"`
}

type UpdateDeviceRequest struct {
	Name     string `json:"name" validate:"omitempty,min=2,max=100"`
	Location string `json:"location" validate:"omitempty,max=200"`
}

type HeartbeatRequest struct {
	SN string `json:"sn" validate:"required,min=4,max=64"`
}

type HeartbeatResponse struct {
	SN     string    `json:"sn"`
	Online bool      `json:"online"`
	SeenAt time.Time `json:"seen_at"`
}

type ListDevicesQuery struct {
	Online *bool `form:"online"`
	Limit  int   `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset int   `form:"offset" validate:"omitempty,min=0"`
}
