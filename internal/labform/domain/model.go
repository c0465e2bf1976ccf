package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// LabForm is one quality-check reading for a single vehicle load of paddy.
// Records are append-only: there is no update path.
type LabForm struct {
	ID            snowflake.ID `gorm:"column:id;primaryKey;autoIncrement:false"`
	CarNo         string       `gorm:"column:car_no;type:varchar(191);not null;index:idx_lab_forms_car_no_created_at,priority:1"`
	SiNo          float64      `gorm:"column:si_no;not null"`
	PaddyName     string       `gorm:"column:paddy_name;type:text;not null"`
	PaddyMoisture float64      `gorm:"column:paddy_moisture;not null"`
	RiceMoisture  float64      `gorm:"column:rice_moisture;not null"`
	PaddyWeight   float64      `gorm:"column:paddy_weight;not null"`
	Husk          float64      `gorm:"column:husk;not null"`
	Bran          float64      `gorm:"column:bran;not null"`
	Dust          float64      `gorm:"column:dust;not null"`
	DDC           float64      `gorm:"column:ddc;not null"`
	PaddyPercent  float64      `gorm:"column:paddy_percent;not null"`
	TotalRice     float64      `gorm:"column:total_rice;not null"`
	HuskToRice    float64      `gorm:"column:husk_to_rice;not null"`
	TotalHandRice float64      `gorm:"column:total_hand_rice;not null"`
	CreatedBy     string       `gorm:"column:created_by;type:text;not null"`
	CreatedAt     time.Time    `gorm:"column:created_at;not null;index:idx_lab_forms_car_no_created_at,priority:2;index:idx_lab_forms_created_at"`
	UpdatedAt     time.Time    `gorm:"column:updated_at;not null"`
}

func (LabForm) TableName() string { return "lab_forms" }

// Response is the wire shape of a stored record.
type Response struct {
	ID            string    `json:"id"`
	CarNo         string    `json:"carNo"`
	SiNo          float64   `json:"siNo"`
	PaddyName     string    `json:"paddyName"`
	PaddyMoisture float64   `json:"paddyMoisture"`
	RiceMoisture  float64   `json:"riceMoisture"`
	PaddyWeight   float64   `json:"paddyWeight"`
	Husk          float64   `json:"husk"`
	Bran          float64   `json:"bran"`
	Dust          float64   `json:"dust"`
	DDC           float64   `json:"ddc"`
	PaddyPercent  float64   `json:"paddyPercent"`
	TotalRice     float64   `json:"totalRice"`
	HuskToRice    float64   `json:"huskToRice"`
	TotalHandRice float64   `json:"totalHandRice"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (f *LabForm) ToResponse() Response {
	return Response{
		ID:            f.ID.String(),
		CarNo:         f.CarNo,
		SiNo:          f.SiNo,
		PaddyName:     f.PaddyName,
		PaddyMoisture: f.PaddyMoisture,
		RiceMoisture:  f.RiceMoisture,
		PaddyWeight:   f.PaddyWeight,
		Husk:          f.Husk,
		Bran:          f.Bran,
		Dust:          f.Dust,
		DDC:           f.DDC,
		PaddyPercent:  f.PaddyPercent,
		TotalRice:     f.TotalRice,
		HuskToRice:    f.HuskToRice,
		TotalHandRice: f.TotalHandRice,
		CreatedBy:     f.CreatedBy,
		CreatedAt:     f.CreatedAt.UTC(),
		UpdatedAt:     f.UpdatedAt.UTC(),
	}
}
