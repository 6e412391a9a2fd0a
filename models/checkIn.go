package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/salesync/reports_backend/config"
	"gorm.io/gorm"
)

// CheckIn is one agent visit. Reports group these by agent and by the date
// part of Timestamp.
type CheckIn struct {
	ID        int           `gorm:"primary_key" json:"id"`
	AgentId   int           `gorm:"not null;index" json:"agent_id"`
	Agent     *User         `gorm:"foreignKey:AgentId" json:"-"`
	ShopId    *int          `json:"shop_id"`
	Timestamp time.Time     `gorm:"not null" json:"timestamp"`
	Latitude  float64       `gorm:"not null" json:"latitude"`
	Longitude float64       `gorm:"not null" json:"longitude"`
	Notes     string        `gorm:"type:text" json:"notes"`
	Status    CheckInStatus `gorm:"type:enum('PENDING','APPROVED','FLAGGED');default:PENDING" json:"status"`
}

func (CheckIn) TableName() string {
	return "checkins"
}

// VisitResponse holds the survey answers captured during a check-in as JSON
// text.
type VisitResponse struct {
	ID        int       `gorm:"primary_key" json:"id"`
	CheckinId int       `gorm:"not null;index" json:"checkin_id"`
	CheckIn   *CheckIn  `gorm:"foreignKey:CheckinId" json:"-"`
	VisitType VisitType `gorm:"type:enum('INDIVIDUAL','CUSTOMER');not null" json:"visit_type"`
	Responses string    `gorm:"type:text;not null" json:"responses"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewCheckIn struct {
	AgentId   int
	Timestamp time.Time
	Latitude  float64
	Longitude float64
	Notes     string
	// Responses is marshalled to JSON when non-nil.
	Responses any
	VisitType VisitType
}

// CreateCheckIn stores a check-in and, when input.Responses is set, its visit
// response in one transaction.
func CreateCheckIn(ctx context.Context, input *NewCheckIn) (*CheckIn, error) {
	if input.AgentId == 0 {
		return nil, errors.New("agent id is required")
	}
	if input.Timestamp.IsZero() {
		return nil, errors.New("timestamp is required")
	}
	checkIn := CheckIn{
		AgentId:   input.AgentId,
		Timestamp: input.Timestamp.UTC(),
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Notes:     input.Notes,
		Status:    CheckInStatusPending,
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&checkIn).Error; err != nil {
			return err
		}
		if input.Responses == nil {
			return nil
		}
		payload, err := json.Marshal(input.Responses)
		if err != nil {
			return err
		}
		visitType := input.VisitType
		if visitType == "" {
			visitType = VisitTypeCustomer
		}
		return tx.Create(&VisitResponse{
			CheckinId: checkIn.ID,
			VisitType: visitType,
			Responses: string(payload),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}
